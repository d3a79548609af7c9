package http

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/delivery"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
	"github.com/anon-exchange/goapi/middleware"
)

type handler struct {
	registry  listing.Registry
	lifecycle listing.LifecycleUseCase
}

func New(e *echo.Echo, registry listing.Registry, lifecycle listing.LifecycleUseCase) {
	h := &handler{registry: registry, lifecycle: lifecycle}

	g := e.Group("/listings")
	g.GET("", h.getListings)
	g.GET("/:contract/:tokenId", h.getListing, middleware.IsValidAddress("contract"))
	g.GET("/:contract/:tokenId/action", h.getLegalAction, middleware.IsValidAddress("contract"))
	g.POST("/:contract/:tokenId/perform", h.performAction, middleware.IsValidAddress("contract"))
	g.POST("/import", h.importNft)
	g.POST("/minted", h.trackMinted)
}

// getListings
//
//	@Description	Get all tracked listings
//	@Tags			listings
//	@Produce		json
//	@Success		200	{object}	[]listing.NftListing
//	@Router			/listings [get]
func (h *handler) getListings(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	return delivery.MakeJsonResp(c, http.StatusOK, h.registry.All(ctx))
}

// getListing
//
//	@Description	Get one tracked listing
//	@Tags			listings
//	@Produce		json
//	@Param			contract	path		string	true	"address"
//	@Param			tokenId		path		string	true	"token id"
//	@Success		200			{object}	listing.NftListing
//	@Failure		404
//	@Router			/listings/{contract}/{tokenId} [get]
func (h *handler) getListing(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	id := listing.Id{
		ContractAddress: domain.Address(c.Param("contract")),
		TokenId:         domain.TokenId(c.Param("tokenId")),
	}.ToLower()
	entry, err := h.registry.Get(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, entry)
}

// getLegalAction
//
//	@Description	Get the single action currently enabled for the nft
//	@Tags			listings
//	@Produce		json
//	@Param			contract	path		string	true	"address"
//	@Param			tokenId		path		string	true	"token id"
//	@Success		200			{object}	actionResp
//	@Failure		404
//	@Router			/listings/{contract}/{tokenId}/action [get]
func (h *handler) getLegalAction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	id := listing.Id{
		ContractAddress: domain.Address(c.Param("contract")),
		TokenId:         domain.TokenId(c.Param("tokenId")),
	}.ToLower()
	action, err := h.lifecycle.LegalAction(ctx, id)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, actionResp{Action: action})
}

type actionResp struct {
	Action listing.ActionKind `json:"action"`
}

type performPayload struct {
	Action listing.ActionKind `json:"action" validate:"required"`
}

// performAction
//
//	@Description	Submit the transaction for the requested action. The action
//	@Description	must be the currently legal one.
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Param			contract	path		string			true	"address"
//	@Param			tokenId		path		string			true	"token id"
//	@Param			payload		body		performPayload	true	"action"
//	@Success		202			{object}	wallet.TxHandle
//	@Failure		409
//	@Router			/listings/{contract}/{tokenId}/perform [post]
func (h *handler) performAction(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := &performPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	id := listing.Id{
		ContractAddress: domain.Address(c.Param("contract")),
		TokenId:         domain.TokenId(c.Param("tokenId")),
	}.ToLower()
	handle, err := h.lifecycle.Perform(ctx, id, p.Action)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusAccepted, handle)
}

type importPayload struct {
	ContractAddress domain.Address `json:"contractAddress" validate:"required"`
	TokenId         domain.TokenId `json:"tokenId" validate:"required"`
}

// importNft
//
//	@Description	Start tracking an nft already owned by the session address
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	importPayload	true	"nft"
//	@Success		200
//	@Failure		403
//	@Failure		409
//	@Router			/listings/import [post]
func (h *handler) importNft(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := &importPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if !common.IsHexAddress(string(p.ContractAddress)) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	id := listing.Id{ContractAddress: p.ContractAddress, TokenId: p.TokenId}.ToLower()
	if err := h.lifecycle.ImportNft(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

// trackMinted
//
//	@Description	Track an nft freshly minted to the session address
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	importPayload	true	"nft"
//	@Success		200
//	@Router			/listings/minted [post]
func (h *handler) trackMinted(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := &importPayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if !common.IsHexAddress(string(p.ContractAddress)) {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrInvalidAddress)
	}
	id := listing.Id{ContractAddress: p.ContractAddress, TokenId: p.TokenId}.ToLower()
	if err := h.lifecycle.TrackMinted(ctx, id); err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, nil)
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/delivery"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/identity"
)

type handler struct {
	manager identity.Manager
}

func New(e *echo.Echo, manager identity.Manager) {
	h := &handler{manager: manager}

	g := e.Group("/identity")
	g.GET("", h.getCurrent)
	g.POST("/generate", h.generate)
	g.POST("/rotate", h.rotate)
}

// getCurrent
//
//	@Description	Get the active identity's public commitment
//	@Tags			identity
//	@Produce		json
//	@Success		200	{object}	identity.Identity
//	@Failure		404
//	@Router			/identity [get]
func (h *handler) getCurrent(c echo.Context) error {
	ident := h.manager.Current()
	if ident == nil {
		return delivery.MakeJsonResp(c, http.StatusNotFound, domain.ErrNoActiveIdentity)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, ident)
}

type generatePayload struct {
	Seed string `json:"seed" validate:"required"`
}

// generate
//
//	@Description	Derive and activate the identity for the given seed. The
//	@Description	seed is kept in memory only and never echoed back.
//	@Tags			identity
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		generatePayload	true	"seed"
//	@Success		200		{object}	identity.Identity
//	@Failure		400
//	@Router			/identity/generate [post]
func (h *handler) generate(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	p := &generatePayload{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, domain.ErrBadParamInput)
	}
	ident, err := h.manager.Generate(ctx, p.Seed)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, ident)
}

// rotate
//
//	@Description	Replace the active identity with a freshly derived one
//	@Tags			identity
//	@Produce		json
//	@Success		200	{object}	identity.Identity
//	@Router			/identity/rotate [post]
func (h *handler) rotate(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	ident, err := h.manager.Rotate(ctx)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, ident)
}

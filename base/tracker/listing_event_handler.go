package tracker

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/anon-exchange/goapi/base/abi"
	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
)

var (
	nftListedSig   = abi.AnonExchangeABI.Events["NftListed"].ID
	nftDelistedSig = abi.AnonExchangeABI.Events["NftDelisted"].ID
	nftSoldSig     = abi.AnonExchangeABI.Events["NftSold"].ID
)

type ListingEventHandlerCfg struct {
	ChainId      int64
	EventUseCase listing.EventUseCase
}

type ListingEventHandler struct {
	chainId int64
	eventUC listing.EventUseCase
}

func NewListingEventHandler(cfg *ListingEventHandlerCfg) EventHandler {
	return &ListingEventHandler{
		chainId: cfg.ChainId,
		eventUC: cfg.EventUseCase,
	}
}

func (h *ListingEventHandler) GetFilterTopics() [][]common.Hash {
	return [][]common.Hash{
		{nftListedSig, nftDelistedSig, nftSoldSig},
	}
}

func (h *ListingEventHandler) ProcessEvents(ctx bCtx.Ctx, logs []logWithBlockTime) error {
	for _, log := range logs {
		switch log.Topics[0] {
		case nftListedSig:
			e, err := toNftListedEvent(&log)
			if err != nil {
				ctx.WithField("err", err).Error("failed to parse NftListed log")
				return err
			}
			if err := h.eventUC.NftListed(ctx, e, toLogMeta(&log)); err != nil {
				ctx.WithField("err", err).Error("eventUC.NftListed failed")
				return err
			}
		case nftDelistedSig:
			e, err := toNftDelistedEvent(&log)
			if err != nil {
				ctx.WithField("err", err).Error("failed to parse NftDelisted log")
				return err
			}
			if err := h.eventUC.NftDelisted(ctx, e, toLogMeta(&log)); err != nil {
				ctx.WithField("err", err).Error("eventUC.NftDelisted failed")
				return err
			}
		case nftSoldSig:
			e, err := toNftSoldEvent(&log)
			if err != nil {
				ctx.WithField("err", err).Error("failed to parse NftSold log")
				return err
			}
			if err := h.eventUC.NftSold(ctx, e, toLogMeta(&log)); err != nil {
				ctx.WithField("err", err).Error("eventUC.NftSold failed")
				return err
			}
		default:
			ctx.WithField("signature", log.Topics[0]).Warn("unrecognized signature, skipping")
		}
	}
	return nil
}

func toNftListedEvent(log *logWithBlockTime) (*listing.NftListedEvent, error) {
	l, err := abi.ToNftListedLog(&log.Log)
	if err != nil {
		return nil, err
	}
	return &listing.NftListedEvent{
		Lister:       toDomainAddress(l.Lister),
		NftAddr:      toDomainAddress(l.NftAddr),
		TokenId:      domain.TokenId(l.TokenId.String()),
		IdCommitment: domain.Commitment(l.IdCommitment.String()),
	}, nil
}

func toNftDelistedEvent(log *logWithBlockTime) (*listing.NftDelistedEvent, error) {
	l, err := abi.ToNftDelistedLog(&log.Log)
	if err != nil {
		return nil, err
	}
	return &listing.NftDelistedEvent{
		NftAddr: toDomainAddress(l.NftAddr),
		TokenId: domain.TokenId(l.TokenId.String()),
	}, nil
}

func toNftSoldEvent(log *logWithBlockTime) (*listing.NftSoldEvent, error) {
	l, err := abi.ToNftSoldLog(&log.Log)
	if err != nil {
		return nil, err
	}
	return &listing.NftSoldEvent{
		NftAddr: toDomainAddress(l.NftAddr),
		TokenId: domain.TokenId(l.TokenId.String()),
	}, nil
}

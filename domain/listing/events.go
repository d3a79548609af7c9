package listing

import (
	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
)

type NftListedEvent struct {
	Lister       domain.Address
	NftAddr      domain.Address
	TokenId      domain.TokenId
	IdCommitment domain.Commitment
}

type NftDelistedEvent struct {
	NftAddr domain.Address
	TokenId domain.TokenId
}

type NftSoldEvent struct {
	NftAddr domain.Address
	TokenId domain.TokenId
}

// EventUseCase folds observed exchange contract events into the registry,
// bypassing the poll cadence for keys already tracked.
type EventUseCase interface {
	NftListed(ctx.Ctx, *NftListedEvent, *domain.LogMeta) error
	NftDelisted(ctx.Ctx, *NftDelistedEvent, *domain.LogMeta) error
	NftSold(ctx.Ctx, *NftSoldEvent, *domain.LogMeta) error
}

package listing

import (
	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/wallet"
)

// ActionKind is the single legal next step for an entry, derived purely from
// (status, approved). Exactly one action is enabled at any time.
type ActionKind string

const (
	ActionApprove ActionKind = "Approve"
	ActionList    ActionKind = "List"
	ActionDelist  ActionKind = "Delist"
	ActionNone    ActionKind = "None"
)

// TxResult reports the outcome of one submitted transaction after its
// confirmation wait finishes.
type TxResult struct {
	Id     Id
	Action ActionKind
	TxHash domain.TxHash
	Err    error
}

// LifecycleUseCase sequences approve/list/delist transactions against the
// exchange contract and applies the confirmed result to the registry.
type LifecycleUseCase interface {
	// LegalAction derives the enabled action from the entry's status and
	// the token's on-chain approval state.
	LegalAction(ctx.Ctx, Id) (ActionKind, error)
	// Perform validates the action against LegalAction, submits the
	// corresponding transaction and returns without waiting for
	// confirmation. The confirmed transition lands on the registry in the
	// background; its outcome is published on Results.
	Perform(ctx.Ctx, Id, ActionKind) (*wallet.TxHandle, error)
	// ImportNft registers a token owned by the session address as NotListed
	ImportNft(ctx.Ctx, Id) error
	// TrackMinted registers a freshly minted token as NotListed
	TrackMinted(ctx.Ctx, Id) error
	// Results delivers confirmation outcomes, including failures
	Results() <-chan *TxResult
}

// Reconciler keeps the registry eventually consistent with the chain
type Reconciler interface {
	Start(ctx.Ctx)
	Wait()
}

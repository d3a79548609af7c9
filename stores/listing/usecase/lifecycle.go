package usecase

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/viney-shih/goroutines"
	"golang.org/x/xerrors"

	"github.com/anon-exchange/goapi/base/abi"
	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/base/metrics"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/identity"
	"github.com/anon-exchange/goapi/domain/listing"
	"github.com/anon-exchange/goapi/domain/wallet"
)

const defaultResultBuffer = 64

type LifecycleCfg struct {
	ChainId         domain.ChainId
	ExchangeAddress domain.Address
	SessionAddress  domain.Address
	// SessionCtx outlives individual calls; confirmation waits run under it
	// so session teardown cancels them, while an http request ending does not
	SessionCtx      bCtx.Ctx
	Registry        listing.Registry
	ChainReader     listing.ChainReader
	Submitter       wallet.Submitter
	Confirmer       wallet.Confirmer
	IdentityManager identity.Manager
	Pool            *goroutines.Pool
	ResultBuffer    int
}

type lifecycleImpl struct {
	chainId         domain.ChainId
	exchangeAddress domain.Address
	sessionAddress  domain.Address
	sessionCtx      bCtx.Ctx
	registry        listing.Registry
	chainReader     listing.ChainReader
	submitter       wallet.Submitter
	confirmer       wallet.Confirmer
	identityManager identity.Manager
	pool            *goroutines.Pool
	results         chan *listing.TxResult
	met             metrics.Service

	mu sync.Mutex
	// usedCommitments blocks a second List with a commitment that already
	// backs a submitted listing. Entries are removed only when the listing
	// transaction fails, never after success: rotation is mandatory.
	usedCommitments map[domain.Commitment]struct{}
}

func NewLifecycle(cfg *LifecycleCfg) listing.LifecycleUseCase {
	bufSize := cfg.ResultBuffer
	if bufSize == 0 {
		bufSize = defaultResultBuffer
	}
	return &lifecycleImpl{
		chainId:         cfg.ChainId,
		exchangeAddress: cfg.ExchangeAddress,
		sessionAddress:  cfg.SessionAddress,
		sessionCtx:      cfg.SessionCtx,
		registry:        cfg.Registry,
		chainReader:     cfg.ChainReader,
		submitter:       cfg.Submitter,
		confirmer:       cfg.Confirmer,
		identityManager: cfg.IdentityManager,
		pool:            cfg.Pool,
		results:         make(chan *listing.TxResult, bufSize),
		met:             metrics.New("lifecycle"),
		usedCommitments: make(map[domain.Commitment]struct{}),
	}
}

// LegalAction derives the single enabled action from (status, approved):
//
//	NotListed/Delisted + !approved -> Approve
//	NotListed/Delisted + approved  -> List
//	Listed                         -> Delist
//	Sold                           -> None
func (u *lifecycleImpl) LegalAction(ctx bCtx.Ctx, id listing.Id) (listing.ActionKind, error) {
	entry, err := u.registry.Get(ctx, id)
	if err != nil {
		return listing.ActionNone, err
	}
	switch entry.Status {
	case listing.StatusListed:
		return listing.ActionDelist, nil
	case listing.StatusSold:
		return listing.ActionNone, nil
	case listing.StatusNotListed, listing.StatusDelisted:
		approved, err := u.chainReader.ReadApproval(ctx, id, u.exchangeAddress)
		if err != nil {
			ctx.WithField("err", err).Error("chainReader.ReadApproval failed")
			return listing.ActionNone, err
		}
		if approved {
			return listing.ActionList, nil
		}
		return listing.ActionApprove, nil
	}
	return listing.ActionNone, domain.ErrInvalidTransition
}

func (u *lifecycleImpl) Perform(ctx bCtx.Ctx, id listing.Id, action listing.ActionKind) (*wallet.TxHandle, error) {
	legal, err := u.LegalAction(ctx, id)
	if err != nil {
		return nil, err
	}
	if action == listing.ActionNone || action != legal {
		ctx.WithFields(log.Fields{
			"contract":  id.ContractAddress,
			"tokenId":   id.TokenId,
			"requested": action,
			"legal":     legal,
		}).Error("requested action is not the legal action")
		return nil, domain.ErrInvalidTransition
	}

	var commitment domain.Commitment
	var spec *wallet.CallSpec
	switch action {
	case listing.ActionApprove:
		spec, err = u.buildApprove(id)
	case listing.ActionList:
		spec, commitment, err = u.buildList(id)
	case listing.ActionDelist:
		spec, err = u.buildDelist(id)
	}
	if err != nil {
		return nil, err
	}

	handle, err := u.submitter.Submit(ctx, spec)
	if err != nil {
		if action == listing.ActionList {
			u.unmarkUsed(commitment)
		}
		ctx.WithField("err", err).Error("submitter.Submit failed")
		return nil, err
	}
	u.met.BumpSum("tx.submitted", 1, "action", string(action))

	if err := u.pool.Schedule(func() {
		u.awaitAndApply(id, action, handle, commitment)
	}); err != nil {
		ctx.WithField("err", err).Error("pool.Schedule failed")
		return nil, err
	}
	return handle, nil
}

func (u *lifecycleImpl) buildApprove(id listing.Id) (*wallet.CallSpec, error) {
	tokenId, err := id.TokenId.ToBig()
	if err != nil {
		return nil, err
	}
	// per-token approval: costs a prompt per listing but leaves no standing
	// operator grant over the whole collection
	data, err := abi.ERC721TokenABI.Pack("approve", common.HexToAddress(string(u.exchangeAddress)), tokenId)
	if err != nil {
		return nil, err
	}
	return &wallet.CallSpec{
		ChainId: u.chainId,
		To:      id.ContractAddress,
		Data:    data,
	}, nil
}

func (u *lifecycleImpl) buildList(id listing.Id) (*wallet.CallSpec, domain.Commitment, error) {
	ident := u.identityManager.Current()
	if ident == nil {
		return nil, "", domain.ErrNoActiveIdentity
	}
	if err := u.markUsed(ident.Commitment); err != nil {
		return nil, "", err
	}
	tokenId, err := id.TokenId.ToBig()
	if err != nil {
		u.unmarkUsed(ident.Commitment)
		return nil, "", err
	}
	commitmentBig, err := ident.Commitment.ToBig()
	if err != nil {
		u.unmarkUsed(ident.Commitment)
		return nil, "", err
	}
	data, err := abi.AnonExchangeABI.Pack("listNFT", common.HexToAddress(string(id.ContractAddress)), tokenId, commitmentBig)
	if err != nil {
		u.unmarkUsed(ident.Commitment)
		return nil, "", err
	}
	return &wallet.CallSpec{
		ChainId: u.chainId,
		To:      u.exchangeAddress,
		Data:    data,
	}, ident.Commitment, nil
}

func (u *lifecycleImpl) buildDelist(id listing.Id) (*wallet.CallSpec, error) {
	tokenId, err := id.TokenId.ToBig()
	if err != nil {
		return nil, err
	}
	data, err := abi.AnonExchangeABI.Pack("delistNFT", common.HexToAddress(string(id.ContractAddress)), tokenId)
	if err != nil {
		return nil, err
	}
	return &wallet.CallSpec{
		ChainId: u.chainId,
		To:      u.exchangeAddress,
		Data:    data,
	}, nil
}

// awaitAndApply waits for the confirmation under the session ctx and applies
// the resulting transition. No optimistic write happens before this point: a
// reverted or timed-out transaction leaves the entry untouched and actionable.
func (u *lifecycleImpl) awaitAndApply(id listing.Id, action listing.ActionKind, handle *wallet.TxHandle, commitment domain.Commitment) {
	ctx := u.sessionCtx
	receipt, err := u.confirmer.AwaitConfirmation(ctx, handle)

	select {
	case <-ctx.Done():
		// session torn down, the broadcast tx is irrevocable but its
		// result must not land on a dead registry
		ctx.WithFields(log.Fields{
			"contract": id.ContractAddress,
			"tokenId":  id.TokenId,
			"txHash":   handle.TxHash,
		}).Info("session ended, discarding tx result")
		return
	default:
	}

	if err == nil && !receipt.Success {
		err = xerrors.Errorf("reverted: %s: %w", receipt.RevertReason, domain.ErrTransactionFailed)
	}
	if err != nil {
		if action == listing.ActionList {
			u.unmarkUsed(commitment)
		}
		u.met.BumpSum("tx.failed", 1, "action", string(action))
		ctx.WithFields(log.Fields{
			"err":      err,
			"contract": id.ContractAddress,
			"tokenId":  id.TokenId,
			"txHash":   handle.TxHash,
		}).Error("transaction failed")
		u.publish(&listing.TxResult{Id: id, Action: action, TxHash: handle.TxHash, Err: err})
		return
	}

	if err := u.applyConfirmed(ctx, id, action, receipt, commitment); err != nil {
		u.publish(&listing.TxResult{Id: id, Action: action, TxHash: handle.TxHash, Err: err})
		return
	}
	u.met.BumpSum("tx.confirmed", 1, "action", string(action))
	u.publish(&listing.TxResult{Id: id, Action: action, TxHash: handle.TxHash})
}

func (u *lifecycleImpl) applyConfirmed(ctx bCtx.Ctx, id listing.Id, action listing.ActionKind, receipt *wallet.Receipt, commitment domain.Commitment) error {
	switch action {
	case listing.ActionApprove:
		// approval is not a listing status, LegalAction re-reads it from
		// the chain, so there is nothing to write
		return nil
	case listing.ActionList:
		blk := receipt.BlockNumber
		patch := &listing.StatusPatch{
			Status:      listing.StatusListed,
			Commitment:  &commitment,
			Lister:      &u.sessionAddress,
			BlockNumber: &blk,
		}
		if err := u.registry.SetStatus(ctx, id, patch); err != nil {
			ctx.WithField("err", err).Error("registry.SetStatus failed")
			return err
		}
		// mandatory rotation: the commitment just published must never
		// back another listing
		if _, err := u.identityManager.Rotate(ctx); err != nil {
			ctx.WithField("err", err).Error("identityManager.Rotate failed")
			return err
		}
		return nil
	case listing.ActionDelist:
		blk := receipt.BlockNumber
		patch := &listing.StatusPatch{
			Status:      listing.StatusDelisted,
			BlockNumber: &blk,
		}
		if err := u.registry.SetStatus(ctx, id, patch); err != nil {
			ctx.WithField("err", err).Error("registry.SetStatus failed")
			return err
		}
		return nil
	}
	return domain.ErrInvalidTransition
}

func (u *lifecycleImpl) ImportNft(ctx bCtx.Ctx, id listing.Id) error {
	if _, err := u.registry.Get(ctx, id); err == nil {
		return domain.ErrConflict
	}
	owner, err := u.chainReader.OwnerOf(ctx, id)
	if err != nil {
		ctx.WithField("err", err).Error("chainReader.OwnerOf failed")
		return err
	}
	if !owner.Equals(u.sessionAddress) {
		return domain.ErrNotOwner
	}
	lister := u.sessionAddress
	return u.registry.UpsertLocal(ctx, &listing.NftListing{
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Status:          listing.StatusNotListed,
		Lister:          &lister,
	})
}

func (u *lifecycleImpl) TrackMinted(ctx bCtx.Ctx, id listing.Id) error {
	lister := u.sessionAddress
	return u.registry.UpsertLocal(ctx, &listing.NftListing{
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Status:          listing.StatusNotListed,
		Lister:          &lister,
	})
}

func (u *lifecycleImpl) Results() <-chan *listing.TxResult {
	return u.results
}

func (u *lifecycleImpl) publish(res *listing.TxResult) {
	select {
	case u.results <- res:
	default:
		u.sessionCtx.WithFields(log.Fields{
			"contract": res.Id.ContractAddress,
			"tokenId":  res.Id.TokenId,
		}).Warn("result channel full, dropping tx result")
	}
}

func (u *lifecycleImpl) markUsed(c domain.Commitment) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, used := u.usedCommitments[c]; used {
		return domain.ErrStaleIdentity
	}
	u.usedCommitments[c] = struct{}{}
	return nil
}

func (u *lifecycleImpl) unmarkUsed(c domain.Commitment) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.usedCommitments, c)
}

package usecase

import (
	"sync/atomic"
	"time"

	"golang.org/x/xerrors"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/base/metrics"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
)

const (
	defaultReconcileInterval = 5 * time.Second
	defaultWarnAfterFailures = 3
)

type ReconcilerCfg struct {
	Interval    time.Duration
	Registry    listing.Registry
	ChainReader listing.ChainReader
	// Filter scopes which remote entries are merged. Nil lister means the
	// registry mirrors the whole marketplace.
	Filter *listing.SnapshotFilter
	// WarnAfterFailures is how many consecutive fetch failures stay silent
	// before being surfaced as a warning
	WarnAfterFailures int
}

type reconcilerImpl struct {
	interval          time.Duration
	registry          listing.Registry
	chainReader       listing.ChainReader
	filter            *listing.SnapshotFilter
	warnAfterFailures int

	inFlight            int32
	consecutiveFailures int32
	stoppedCh           chan interface{}
	met                 metrics.Service
}

type reconcilerUseCase interface {
	listing.Reconciler
	listing.EventUseCase
}

func NewReconciler(cfg *ReconcilerCfg) reconcilerUseCase {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultReconcileInterval
	}
	warnAfter := cfg.WarnAfterFailures
	if warnAfter == 0 {
		warnAfter = defaultWarnAfterFailures
	}
	return &reconcilerImpl{
		interval:          interval,
		registry:          cfg.Registry,
		chainReader:       cfg.ChainReader,
		filter:            cfg.Filter,
		warnAfterFailures: warnAfter,
		stoppedCh:         make(chan interface{}),
		met:               metrics.New("reconciler"),
	}
}

func (r *reconcilerImpl) Start(ctx bCtx.Ctx) {
	go func() {
		defer close(r.stoppedCh)
		r.loop(ctx)
	}()
}

func (r *reconcilerImpl) Wait() {
	<-r.stoppedCh
}

func (r *reconcilerImpl) loop(ctx bCtx.Ctx) {
	// once immediately, then on the fixed cadence
	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick runs one reconciliation unless the previous one is still in flight.
// A busy tick is skipped, not queued: at most one fetch is outstanding.
func (r *reconcilerImpl) tick(ctx bCtx.Ctx) {
	if !atomic.CompareAndSwapInt32(&r.inFlight, 0, 1) {
		r.met.BumpSum("tick.skipped", 1)
		ctx.Debug("previous reconciliation still in flight, skipping tick")
		return
	}
	go func() {
		defer atomic.StoreInt32(&r.inFlight, 0)
		if err := r.runOnce(ctx); err != nil {
			failures := atomic.AddInt32(&r.consecutiveFailures, 1)
			r.met.BumpSum("reconcile.err", 1)
			if failures >= int32(r.warnAfterFailures) {
				ctx.WithFields(log.Fields{
					"err":      err,
					"failures": failures,
				}).Warn("reconciliation keeps failing")
			} else {
				ctx.WithField("err", err).Debug("reconciliation failed, will retry next tick")
			}
			return
		}
		atomic.StoreInt32(&r.consecutiveFailures, 0)
	}()
}

func (r *reconcilerImpl) runOnce(ctx bCtx.Ctx) error {
	defer r.met.BumpTime("reconcile.time").End()

	snapshot, err := r.chainReader.ReadSnapshot(ctx, r.filter)
	if err != nil {
		return xerrors.Errorf("%s: %w", err.Error(), domain.ErrNetworkUnavailable)
	}

	select {
	case <-ctx.Done():
		// session torn down while the fetch was in flight, its result must
		// not land on a dead registry
		ctx.Debug("session ended, discarding snapshot")
		return nil
	default:
	}

	if err := r.registry.MergeRemote(ctx, snapshot, r.filter); err != nil {
		ctx.WithField("err", err).Error("registry.MergeRemote failed")
		return err
	}
	r.met.BumpAvg("snapshot.effectiveBlock", float64(snapshot.EffectiveBlock))
	r.met.BumpAvg("snapshot.listings", float64(len(snapshot.Listings)))
	return nil
}

// Event-driven path: observed contract events update tracked keys
// immediately, bypassing the poll cadence, under the same last-remote-wins
// rule. Keys the registry does not track are ignored, the next snapshot will
// introduce them if they pass the filter.

func (r *reconcilerImpl) NftListed(ctx bCtx.Ctx, e *listing.NftListedEvent, meta *domain.LogMeta) error {
	lister := e.Lister
	commitment := e.IdCommitment
	return r.applyEvent(ctx, listing.Id{ContractAddress: e.NftAddr, TokenId: e.TokenId}, meta, &listing.StatusPatch{
		Status:     listing.StatusListed,
		Commitment: &commitment,
		Lister:     &lister,
	})
}

func (r *reconcilerImpl) NftDelisted(ctx bCtx.Ctx, e *listing.NftDelistedEvent, meta *domain.LogMeta) error {
	return r.applyEvent(ctx, listing.Id{ContractAddress: e.NftAddr, TokenId: e.TokenId}, meta, &listing.StatusPatch{
		Status: listing.StatusDelisted,
	})
}

func (r *reconcilerImpl) NftSold(ctx bCtx.Ctx, e *listing.NftSoldEvent, meta *domain.LogMeta) error {
	return r.applyEvent(ctx, listing.Id{ContractAddress: e.NftAddr, TokenId: e.TokenId}, meta, &listing.StatusPatch{
		Status: listing.StatusSold,
	})
}

func (r *reconcilerImpl) applyEvent(ctx bCtx.Ctx, id listing.Id, meta *domain.LogMeta, patch *listing.StatusPatch) error {
	blk := meta.BlockNumber
	patch.BlockNumber = &blk
	// the registry drops patches older than the key's last confirmed write,
	// the ordering check and the write share one lock
	err := r.registry.SetStatus(ctx, id, patch)
	if err == domain.ErrUnknownKey {
		ctx.WithFields(log.Fields{
			"contract": id.ContractAddress,
			"tokenId":  id.TokenId,
		}).Debug("event for untracked key, ignoring")
		return nil
	}
	if err != nil {
		ctx.WithField("err", err).Error("registry.SetStatus failed")
		return err
	}
	r.met.BumpSum("event.applied", 1, "status", string(patch.Status))
	return nil
}

package repository

import (
	"sync"
	"time"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
)

type registryImpl struct {
	mu      sync.Mutex
	entries map[listing.Id]*listing.NftListing
}

// NewRegistry creates the in-memory session registry. The mutex is the single
// writer discipline: MergeRemote and SetStatus never interleave partially.
func NewRegistry() listing.Registry {
	return &registryImpl{
		entries: make(map[listing.Id]*listing.NftListing),
	}
}

func (r *registryImpl) UpsertLocal(ctx bCtx.Ctx, l *listing.NftListing) error {
	if err := checkInvariant(l.Status, l.Commitment); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	e := *l
	e.ContractAddress = e.ContractAddress.ToLower()
	e.LocalOrigin = true
	e.UpdatedAt = now
	if old, ok := r.entries[e.ToId()]; ok {
		e.CreatedAt = old.CreatedAt
	} else {
		e.CreatedAt = now
	}
	r.entries[e.ToId()] = &e
	return nil
}

func (r *registryImpl) Get(ctx bCtx.Ctx, id listing.Id) (*listing.NftListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id.ToLower()]
	if !ok {
		return nil, domain.ErrUnknownKey
	}
	cpy := *e
	return &cpy, nil
}

func (r *registryImpl) All(ctx bCtx.Ctx) []listing.NftListing {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]listing.NftListing, 0, len(r.entries))
	for _, e := range r.entries {
		res = append(res, *e)
	}
	return res
}

// MergeRemote folds a snapshot into the registry: merge-by-key,
// last-remote-wins, except keys whose last confirmed local write is newer
// than the snapshot's effective block. Entries absent from the snapshot are
// left untouched, the remote source may simply not have indexed them yet.
// Idempotent for a fixed snapshot.
func (r *registryImpl) MergeRemote(ctx bCtx.Ctx, snapshot *listing.Snapshot, filter *listing.SnapshotFilter) error {
	for i := range snapshot.Listings {
		remote := &snapshot.Listings[i]
		if !filter.Match(remote) {
			continue
		}
		if err := checkInvariant(remote.Status, remote.Commitment); err != nil {
			ctx.WithFields(log.Fields{
				"contract": remote.ContractAddress,
				"tokenId":  remote.TokenId,
				"status":   remote.Status,
			}).Error("remote entry violates status/commitment invariant")
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for i := range snapshot.Listings {
		remote := &snapshot.Listings[i]
		if !filter.Match(remote) {
			continue
		}
		key := remote.ToId().ToLower()
		local, ok := r.entries[key]
		if !ok {
			e := *remote
			e.ContractAddress = key.ContractAddress
			e.LocalOrigin = false
			e.CreatedAt = now
			e.UpdatedAt = now
			r.entries[key] = &e
			continue
		}
		if local.LastAppliedBlock > snapshot.EffectiveBlock {
			// a confirmed local write postdates this snapshot,
			// applying it would resurrect stale state
			continue
		}
		local.Status = remote.Status
		local.Commitment = remote.Commitment
		local.Lister = remote.Lister
		local.PriceInEth = remote.PriceInEth
		local.UpdatedAt = now
	}
	return nil
}

func (r *registryImpl) SetStatus(ctx bCtx.Ctx, id listing.Id, patch *listing.StatusPatch) error {
	if !patch.Status.IsValid() {
		return domain.ErrInvalidTransition
	}
	if err := checkInvariant(patch.Status, patch.Commitment); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id.ToLower()]
	if !ok {
		return domain.ErrUnknownKey
	}
	if patch.BlockNumber != nil && *patch.BlockNumber < e.LastAppliedBlock {
		// a newer confirmed write already landed on this key; the ordering
		// check has to happen under the same lock as the write
		return nil
	}
	e.Status = patch.Status
	e.Commitment = patch.Commitment
	if patch.Status != listing.StatusListed {
		e.Commitment = nil
	}
	if patch.Lister != nil {
		e.Lister = patch.Lister
	}
	if patch.BlockNumber != nil {
		e.LastAppliedBlock = *patch.BlockNumber
	}
	e.UpdatedAt = time.Now()
	return nil
}

// checkInvariant rejects the Listed-without-commitment state
func checkInvariant(status listing.Status, commitment *domain.Commitment) error {
	if status == listing.StatusListed && (commitment == nil || commitment.IsEmpty()) {
		return domain.ErrInvalidTransition
	}
	return nil
}

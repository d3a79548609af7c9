package listing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
)

type Status string

const (
	StatusNotListed Status = "NotListed"
	StatusListed    Status = "Listed"
	StatusSold      Status = "Sold"
	StatusDelisted  Status = "Delisted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNotListed, StatusListed, StatusSold, StatusDelisted:
		return true
	}
	return false
}

// Id is the immutable identity key of a tracked nft
type Id struct {
	ContractAddress domain.Address `json:"contractAddress"`
	TokenId         domain.TokenId `json:"tokenId"`
}

func (id Id) ToLower() Id {
	return Id{
		ContractAddress: id.ContractAddress.ToLower(),
		TokenId:         id.TokenId,
	}
}

// NftListing is one registry entry. Entries are never deleted, only
// transitioned. Listed entries always carry the commitment that was bound to
// the listing; the registry rejects writes violating that.
type NftListing struct {
	ContractAddress domain.Address     `json:"contractAddress"`
	TokenId         domain.TokenId     `json:"tokenId"`
	Status          Status             `json:"status"`
	Lister          *domain.Address    `json:"lister,omitempty"`
	Commitment      *domain.Commitment `json:"commitment,omitempty"`
	// PriceInEth is the exchange's sale price in eth, stamped on Listed
	// entries when a snapshot is read
	PriceInEth *decimal.Decimal `json:"priceInEth,omitempty"`
	// LocalOrigin marks entries minted or imported in this session, as
	// opposed to entries first seen through reconciliation.
	LocalOrigin bool `json:"localOrigin"`
	// LastAppliedBlock is the block of the last confirmed on-chain write
	// applied to this entry (a confirmed local transaction or an observed
	// contract event). Remote snapshots effective at or before this block
	// are discarded for this key.
	LastAppliedBlock domain.BlockNumber `json:"lastAppliedBlock"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

func (l *NftListing) ToId() Id {
	return Id{
		ContractAddress: l.ContractAddress,
		TokenId:         l.TokenId,
	}
}

// StatusPatch is one atomic status transition. Commitment and Lister replace
// the entry's fields wholesale; BlockNumber, when set, bumps LastAppliedBlock
// (the write came from a confirmed on-chain write). A patch whose BlockNumber
// is older than the entry's LastAppliedBlock is dropped by the registry.
type StatusPatch struct {
	Status      Status
	Commitment  *domain.Commitment
	Lister      *domain.Address
	BlockNumber *domain.BlockNumber
}

// Snapshot is a point-in-time read of contract-derived listing state.
// Never mutated locally.
type Snapshot struct {
	EffectiveBlock domain.BlockNumber
	Listings       []NftListing
}

// SnapshotFilter scopes ReadSnapshot and MergeRemote. Nil Lister means all
// listings (global marketplace view); otherwise only entries listed by the
// given address are considered.
type SnapshotFilter struct {
	Lister *domain.Address
}

func (f *SnapshotFilter) Match(l *NftListing) bool {
	if f == nil || f.Lister == nil {
		return true
	}
	if l.Lister == nil {
		return false
	}
	return f.Lister.Equals(*l.Lister)
}

// Registry is the in-memory authoritative view of nfts relevant to this
// session, keyed by (contractAddress, tokenId). All mutations serialize
// through a single writer.
type Registry interface {
	UpsertLocal(ctx.Ctx, *NftListing) error
	Get(ctx.Ctx, Id) (*NftListing, error)
	All(ctx.Ctx) []NftListing
	MergeRemote(ctx.Ctx, *Snapshot, *SnapshotFilter) error
	SetStatus(ctx.Ctx, Id, *StatusPatch) error
}

// ChainReader reads contract-derived state
type ChainReader interface {
	ReadApproval(c ctx.Ctx, id Id, operator domain.Address) (bool, error)
	ReadSnapshot(c ctx.Ctx, filter *SnapshotFilter) (*Snapshot, error)
	OwnerOf(c ctx.Ctx, id Id) (domain.Address, error)
}

package identity

import (
	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
)

// Identity is a user-held secret seed and its derived public commitment.
// The seed never leaves the process and dies with the session.
type Identity struct {
	Seed       string            `json:"-"`
	Commitment domain.Commitment `json:"commitment"`
}

// Deriver is the opaque cryptographic capability mapping a secret seed to a
// public commitment. The derivation is deterministic so the same seed always
// reproduces the same identity.
type Deriver interface {
	DeriveIdentity(c ctx.Ctx, seed string) (*Identity, error)
}

// Manager owns the single active identity of a session.
type Manager interface {
	// Current returns the active identity, nil before the first Generate/Rotate
	Current() *Identity
	// Generate derives the identity for seed and makes it active.
	// Fails with domain.ErrInvalidSeed on an empty or blank seed.
	Generate(c ctx.Ctx, seed string) (*Identity, error)
	// Rotate draws a fresh random seed, derives a new identity and discards
	// the old one. Listings made under the previous identity can no longer
	// be claimed, which is what makes successive listings unlinkable.
	Rotate(c ctx.Ctx) (*Identity, error)
}

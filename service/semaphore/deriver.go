// Package semaphore adapts the anonymous identity primitive behind the
// identity.Deriver contract. The commitment derivation is treated as an
// opaque capability: the core only relies on it being deterministic per seed
// and safe to publish.
package semaphore

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/identity"
)

// domainTag separates this derivation from any other keccak use of the seed
const domainTag = "anon-exchange/identity/v1"

// snarkScalarField is the BN254 group order; commitments live in this field
var snarkScalarField, _ = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)

type deriverImpl struct{}

func NewDeriver() identity.Deriver {
	return &deriverImpl{}
}

func (d *deriverImpl) DeriveIdentity(ctx bCtx.Ctx, seed string) (*identity.Identity, error) {
	if strings.TrimSpace(seed) == "" {
		return nil, domain.ErrInvalidSeed
	}
	digest := crypto.Keccak256([]byte(domainTag), []byte(seed))
	commitment := new(big.Int).Mod(new(big.Int).SetBytes(digest), snarkScalarField)
	return &identity.Identity{
		Seed:       seed,
		Commitment: domain.Commitment(commitment.String()),
	}, nil
}

package wallet

import (
	"math/big"

	"github.com/google/uuid"

	"github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
)

// CallSpec is one prepared contract call. Data is abi-packed by the caller;
// signing and broadcasting belong to the wallet behind Submitter.
type CallSpec struct {
	ChainId domain.ChainId
	To      domain.Address
	Data    []byte
	Value   *big.Int
}

// TxHandle identifies one submitted transaction
type TxHandle struct {
	Id     uuid.UUID
	TxHash domain.TxHash
}

type Receipt struct {
	TxHash      domain.TxHash
	BlockNumber domain.BlockNumber
	Success     bool
	// RevertReason holds the decoded revert string when Success is false
	// and the node exposes it, otherwise empty.
	RevertReason string
}

// Submitter broadcasts a prepared call through the user's wallet.
// Submit returns as soon as the transaction is accepted by the mempool.
type Submitter interface {
	Submit(ctx.Ctx, *CallSpec) (*TxHandle, error)
}

// Confirmer blocks until the handle's transaction is mined or ctx is done
type Confirmer interface {
	AwaitConfirmation(ctx.Ctx, *TxHandle) (*Receipt, error)
}

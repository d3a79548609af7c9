package wallet

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/google/uuid"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/wallet"
)

type NodeSubmitterCfg struct {
	Rpc  *rpc.Client
	From domain.Address
}

// nodeSubmitterImpl sends calls through the node's own signer
// (eth_sendTransaction). The session address must be unlocked by the node or
// an attached external signer; the core never touches key material.
type nodeSubmitterImpl struct {
	rpc  *rpc.Client
	from common.Address
}

func NewNodeSubmitter(cfg *NodeSubmitterCfg) wallet.Submitter {
	return &nodeSubmitterImpl{
		rpc:  cfg.Rpc,
		from: common.HexToAddress(string(cfg.From)),
	}
}

func (s *nodeSubmitterImpl) Submit(ctx bCtx.Ctx, spec *wallet.CallSpec) (*wallet.TxHandle, error) {
	args := map[string]interface{}{
		"from": s.from,
		"to":   common.HexToAddress(string(spec.To)),
		"data": hexutil.Bytes(spec.Data),
	}
	if spec.Value != nil {
		args["value"] = (*hexutil.Big)(spec.Value)
	}

	var txHash common.Hash
	if err := s.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", args); err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
			"to":  spec.To,
		}).Error("eth_sendTransaction failed")
		return nil, err
	}
	return &wallet.TxHandle{
		Id:     uuid.New(),
		TxHash: domain.TxHash(txHash.Hex()),
	}, nil
}

// Package wallet holds the node-facing halves of the transaction boundary:
// submission through the node's signer and confirmation waiting. Key
// management stays outside the core.
package wallet

import (
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/xerrors"

	"github.com/anon-exchange/goapi/base/backoff"
	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/wallet"
)

const (
	defaultPollStart   = time.Second
	defaultPollLimit   = 15 * time.Second
	defaultWaitTimeout = 5 * time.Minute
)

type ConfirmerCfg struct {
	Client      domain.EthClientRepo
	PollStart   time.Duration
	PollLimit   time.Duration
	WaitTimeout time.Duration
}

type confirmerImpl struct {
	client      domain.EthClientRepo
	pollStart   time.Duration
	pollLimit   time.Duration
	waitTimeout time.Duration
}

func NewConfirmer(cfg *ConfirmerCfg) wallet.Confirmer {
	pollStart := cfg.PollStart
	if pollStart == 0 {
		pollStart = defaultPollStart
	}
	pollLimit := cfg.PollLimit
	if pollLimit == 0 {
		pollLimit = defaultPollLimit
	}
	waitTimeout := cfg.WaitTimeout
	if waitTimeout == 0 {
		waitTimeout = defaultWaitTimeout
	}
	return &confirmerImpl{
		client:      cfg.Client,
		pollStart:   pollStart,
		pollLimit:   pollLimit,
		waitTimeout: waitTimeout,
	}
}

// AwaitConfirmation polls for the receipt with exponential backoff until the
// transaction is mined, the wait times out, or ctx is cancelled.
func (c *confirmerImpl) AwaitConfirmation(ctx bCtx.Ctx, handle *wallet.TxHandle) (*wallet.Receipt, error) {
	waitCtx, cancel := bCtx.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	txHash := common.HexToHash(handle.TxHash.String())
	b := backoff.NewExponentialBackoff(c.pollStart, c.pollLimit)
	for {
		receipt, err := c.client.TransactionReceipt(waitCtx, txHash)
		if err == nil {
			return c.toWalletReceipt(waitCtx, receipt), nil
		}
		if err != ethereum.NotFound {
			ctx.WithFields(log.Fields{
				"err":    err,
				"txHash": handle.TxHash,
			}).Warn("TransactionReceipt failed, retrying")
		}
		if err := b.Backoff(waitCtx); err != nil {
			return nil, xerrors.Errorf("confirmation wait ended for %s: %w", handle.TxHash, err)
		}
	}
}

func (c *confirmerImpl) toWalletReceipt(ctx bCtx.Ctx, receipt *types.Receipt) *wallet.Receipt {
	res := &wallet.Receipt{
		TxHash:      domain.TxHash(receipt.TxHash.Hex()),
		BlockNumber: domain.BlockNumber(receipt.BlockNumber.Uint64()),
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}
	if !res.Success {
		res.RevertReason = c.fetchRevertReason(ctx, receipt)
	}
	return res
}

// fetchRevertReason re-executes the reverted call at its block. Best effort,
// empty when the node cannot replay it.
func (c *confirmerImpl) fetchRevertReason(ctx bCtx.Ctx, receipt *types.Receipt) string {
	tx, _, err := c.client.TransactionByHash(ctx, receipt.TxHash)
	if err != nil {
		return ""
	}
	to := tx.To()
	if to == nil {
		return ""
	}
	msg := ethereum.CallMsg{
		To:    to,
		Data:  tx.Data(),
		Value: tx.Value(),
	}
	_, err = c.client.CallContract(ctx, msg, receipt.BlockNumber)
	if err == nil {
		return ""
	}
	return err.Error()
}

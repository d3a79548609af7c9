package tracker

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"golang.org/x/xerrors"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/base/metrics"
	"github.com/anon-exchange/goapi/domain"
)

var metOnce sync.Once
var met metrics.Service

const (
	processInterval   = 10 * time.Second
	tooManyLogsLimit  = 30 * time.Second
	headerRetryLimit  = 10
	headerRetryPause  = time.Second
	blockTimeCacheCap = 256
)

type CurrentBlockProvider interface {
	BlockNumber(context.Context) (uint64, error)
}

type EventHandler interface {
	GetFilterTopics() [][]common.Hash
	ProcessEvents(bCtx.Ctx, []logWithBlockTime) error
}

// EventTrackerCfg configures one session-scoped contract watcher. The cursor
// starts at the current head: the registry's history is reconstructed by the
// snapshot reconciler, the tracker only delivers events from session start.
type EventTrackerCfg struct {
	ChainId            int64
	CurrentBlockGetter CurrentBlockProvider
	WsClient           domain.EthClientRepo
	RpcClient          domain.EthClientRepo
	ContractAddress    common.Address
	EventHandl         EventHandler
	ErrorCh            chan<- error
	FollowDistance     uint64
}

type EventTracker struct {
	chainId            int64
	currentBlockGetter CurrentBlockProvider
	wsClient           domain.EthClientRepo
	rpcClient          domain.EthClientRepo
	contractAddress    common.Address
	eventHandler       EventHandler
	errorCh            chan<- error
	followDistance     uint64
	filter             ethereum.FilterQuery
	lastBlockProcessed uint64
	blockTimes         map[uint64]time.Time
	stoppedCh          chan interface{}
}

func NewEventTracker(cfg *EventTrackerCfg) *EventTracker {
	metOnce.Do(func() {
		met = metrics.New("tracker")
	})
	filter := ethereum.FilterQuery{
		Addresses: []common.Address{cfg.ContractAddress},
		Topics:    cfg.EventHandl.GetFilterTopics(),
	}
	return &EventTracker{
		chainId:            cfg.ChainId,
		currentBlockGetter: cfg.CurrentBlockGetter,
		wsClient:           cfg.WsClient,
		rpcClient:          cfg.RpcClient,
		contractAddress:    cfg.ContractAddress,
		eventHandler:       cfg.EventHandl,
		errorCh:            cfg.ErrorCh,
		followDistance:     cfg.FollowDistance,
		filter:             filter,
		blockTimes:         make(map[uint64]time.Time),
		stoppedCh:          make(chan interface{}),
	}
}

func (f *EventTracker) Start(ctx bCtx.Ctx) {
	go func() {
		defer close(f.stoppedCh)
		if err := f.loop(ctx); err != nil {
			select {
			case f.errorCh <- err:
			case <-ctx.Done():
			}
		}
	}()
}

func (f *EventTracker) Wait() {
	<-f.stoppedCh
}

func (f *EventTracker) loop(ctx bCtx.Ctx) error {
	current, err := f.currentBlockGetter.BlockNumber(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("currentBlockGetter.BlockNumber failed")
		return err
	}
	f.lastBlockProcessed = current

	ch := make(chan types.Log, 1024)
	// from/to must stay unset on a subscription filter
	filter := ethereum.FilterQuery{
		Addresses: f.filter.Addresses,
		Topics:    f.filter.Topics,
	}
	sub, err := f.wsClient.SubscribeFilterLogs(ctx, filter, ch)
	if err != nil {
		ctx.WithField("err", err).Error("wsClient.SubscribeFilterLogs failed")
		return err
	}
	defer sub.Unsubscribe()
	ctx.WithField("contract", f.contractAddress.Hex()).Info("subscribed to contract logs")

	// pending blocks wait out the follow distance before their logs are
	// fetched and handed to the handler
	lastPending := current
	var pending []uint64

	ticker := time.NewTicker(processInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-sub.Err():
			ctx.WithField("err", err).Error("subscription broke")
			return err
		case l := <-ch:
			if l.BlockNumber > lastPending {
				lastPending = l.BlockNumber
				pending = append(pending, l.BlockNumber)
			}
			ctx.WithFields(log.Fields{
				"contract":   f.contractAddress.Hex(),
				"logBlock":   l.BlockNumber,
				"numPending": len(pending),
			}).Debug("received log")
		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			current, err := f.currentBlockGetter.BlockNumber(ctx)
			if err != nil {
				ctx.WithField("err", err).Error("currentBlockGetter.BlockNumber failed")
				return err
			}
			met.BumpAvg("chain.lastBlock", float64(current), "chainId", fmt.Sprint(f.chainId))
			target := current - f.followDistance
			if pending[0] > target {
				continue
			}
			start := f.lastBlockProcessed + 1
			if target < start {
				continue
			}
			if err := f.processBlkRange(ctx, blockRange{start, target}); err != nil {
				ctx.WithField("err", err).Error("processBlkRange failed")
				return err
			}
			i := 0
			for _, p := range pending {
				if p > target {
					break
				}
				i++
			}
			pending = pending[i:]
		}
	}
}

func (f *EventTracker) processBlkRange(ctx bCtx.Ctx, r blockRange) error {
	ranges := []blockRange{r}
	for len(ranges) > 0 {
		idx := len(ranges) - 1
		cur := ranges[idx]
		ranges = ranges[:idx]

		f.filter.FromBlock = new(big.Int).SetUint64(cur.begin)
		f.filter.ToBlock = new(big.Int).SetUint64(cur.end)
		tCtx, cancel := bCtx.WithTimeout(ctx, tooManyLogsLimit)
		logs, err := f.rpcClient.FilterLogs(tCtx, f.filter)
		cancel()
		if err != nil {
			if cur.begin == cur.end {
				ctx.WithFields(log.Fields{
					"err":      err,
					"range":    cur.String(),
					"contract": f.contractAddress.Hex(),
				}).Error("failed to get logs within one block")
				return err
			}
			r1, r2 := cur.split()
			ranges = append(ranges, r2, r1)
			ctx.WithFields(log.Fields{
				"original": cur.String(),
				"range1":   r1.String(),
				"range2":   r2.String(),
			}).Info("splitting blockRange")
			continue
		}

		withTime, err := f.toLogsWithBlockTime(ctx, logs)
		if err != nil {
			return xerrors.Errorf("failed to inject block time: %w", err)
		}
		if err := f.eventHandler.ProcessEvents(ctx, withTime); err != nil {
			return xerrors.Errorf("failed to process events: %w", err)
		}
		f.lastBlockProcessed = cur.end
		met.BumpAvg("tracker.lastBlock", float64(cur.end), "chainId", fmt.Sprint(f.chainId), "contract", f.contractAddress.Hex())
	}
	return nil
}

func (f *EventTracker) toLogsWithBlockTime(ctx bCtx.Ctx, logs []types.Log) ([]logWithBlockTime, error) {
	withTime := make([]logWithBlockTime, len(logs))
	for idx, l := range logs {
		blkTime, err := f.getBlockTime(ctx, l.BlockNumber)
		if err != nil {
			ctx.WithFields(log.Fields{
				"err":   err,
				"block": l.BlockNumber,
			}).Error("failed to get block time")
			return nil, err
		}
		withTime[idx] = logWithBlockTime{Log: l, blockTime: blkTime}
	}
	return withTime, nil
}

func (f *EventTracker) getBlockTime(ctx bCtx.Ctx, number uint64) (time.Time, error) {
	if t, ok := f.blockTimes[number]; ok {
		return t, nil
	}
	h, err := f.headerByNumberWithRetry(ctx, number, headerRetryLimit, headerRetryPause)
	if err != nil {
		return time.Time{}, err
	}
	t := time.Unix(int64(h.Time), 0)
	if len(f.blockTimes) >= blockTimeCacheCap {
		f.blockTimes = make(map[uint64]time.Time)
	}
	f.blockTimes[number] = t
	return t, nil
}

func (f *EventTracker) headerByNumberWithRetry(ctx bCtx.Ctx, number uint64, retryLimit int, interval time.Duration) (*types.Header, error) {
	var (
		err error
		h   *types.Header
	)
	blk := new(big.Int).SetUint64(number)
	for i := 0; i < retryLimit; i++ {
		if i > 0 {
			ctx.WithFields(log.Fields{
				"retry":    i,
				"interval": interval,
				"blk":      number,
			}).Warn("rpcClient.HeaderByNumber failed, retry")
			select {
			case <-ctx.Done():
				return nil, xerrors.New("context canceled")
			case <-time.After(interval):
			}
			interval *= 2
		}
		h, err = f.rpcClient.HeaderByNumber(ctx, blk)
		if err == nil {
			break
		}
	}
	return h, err
}

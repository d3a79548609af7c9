// Package chain implements listing.ChainReader on top of an rpc node:
// approval reads with a short-TTL cache, and listing snapshots reconstructed
// by replaying the exchange contract's logs.
package chain

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/ethereum/go-ethereum"
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	"github.com/anon-exchange/goapi/base/abi"
	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/base/log"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
)

const (
	defaultApprovalTTL = 5 * time.Second
	approvalCacheSize  = 512 * 1024
	snapshotChunk      = uint64(10000)
	minSnapshotChunk   = uint64(16)
)

type ReaderCfg struct {
	ChainId         domain.ChainId
	Client          domain.EthClientRepo
	ExchangeAddress domain.Address
	// StartBlock is where snapshot log replay begins, normally the
	// exchange contract's deploy block
	StartBlock  uint64
	ApprovalTTL time.Duration
}

type readerImpl struct {
	chainId         domain.ChainId
	client          domain.EthClientRepo
	exchangeAddress common.Address
	startBlock      uint64
	approvalTTL     time.Duration
	cache           *freecache.Cache

	priceMu   sync.Mutex
	salePrice *decimal.Decimal
}

func NewReader(cfg *ReaderCfg) listing.ChainReader {
	ttl := cfg.ApprovalTTL
	if ttl == 0 {
		ttl = defaultApprovalTTL
	}
	return &readerImpl{
		chainId:         cfg.ChainId,
		client:          cfg.Client,
		exchangeAddress: common.HexToAddress(string(cfg.ExchangeAddress)),
		startBlock:      cfg.StartBlock,
		approvalTTL:     ttl,
		cache:           freecache.NewCache(approvalCacheSize),
	}
}

// ReadApproval reports whether operator may transfer the token, either via a
// per-token approval or a collection-wide operator grant. Results are cached
// briefly, the ui rechecks the legal action far more often than approvals
// change.
func (r *readerImpl) ReadApproval(ctx bCtx.Ctx, id listing.Id, operator domain.Address) (bool, error) {
	key := []byte(fmt.Sprintf("approval:%s:%s:%s", id.ContractAddress.ToLowerStr(), id.TokenId, operator.ToLowerStr()))
	if v, err := r.cache.Get(key); err == nil && len(v) == 1 {
		return v[0] == 1, nil
	}

	tokenId, err := id.TokenId.ToBig()
	if err != nil {
		return false, err
	}
	contract := common.HexToAddress(string(id.ContractAddress))
	operatorAddr := common.HexToAddress(string(operator))

	res, err := r.call(ctx, contract, abi.ERC721TokenABI, "getApproved", tokenId)
	if err != nil {
		return false, err
	}
	approved := res[0].(common.Address) == operatorAddr

	if !approved {
		owner, err := r.OwnerOf(ctx, id)
		if err != nil {
			return false, err
		}
		res, err := r.call(ctx, contract, abi.ERC721TokenABI, "isApprovedForAll", common.HexToAddress(string(owner)), operatorAddr)
		if err != nil {
			return false, err
		}
		approved = res[0].(bool)
	}

	v := []byte{0}
	if approved {
		v[0] = 1
	}
	r.cache.Set(key, v, int(r.approvalTTL/time.Second))
	return approved, nil
}

func (r *readerImpl) OwnerOf(ctx bCtx.Ctx, id listing.Id) (domain.Address, error) {
	tokenId, err := id.TokenId.ToBig()
	if err != nil {
		return "", err
	}
	res, err := r.call(ctx, common.HexToAddress(string(id.ContractAddress)), abi.ERC721TokenABI, "ownerOf", tokenId)
	if err != nil {
		return "", err
	}
	return domain.Address(res[0].(common.Address).Hex()).ToLower(), nil
}

// ReadSnapshot replays the exchange's logs from the start block to the
// current head and reduces them per key to the latest listing state. The
// snapshot's effective block is the head at scan time.
func (r *readerImpl) ReadSnapshot(ctx bCtx.Ctx, filter *listing.SnapshotFilter) (*listing.Snapshot, error) {
	head, err := r.client.BlockNumber(ctx)
	if err != nil {
		ctx.WithField("err", err).Error("client.BlockNumber failed")
		return nil, err
	}

	reduced := make(map[listing.Id]*listing.NftListing)
	begin := r.startBlock
	chunk := snapshotChunk
	for begin <= head {
		end := begin + chunk - 1
		if end > head {
			end = head
		}
		logs, err := r.client.FilterLogs(ctx, ethereum.FilterQuery{
			Addresses: []common.Address{r.exchangeAddress},
			Topics:    [][]common.Hash{{abi.AnonExchangeABI.Events["NftListed"].ID, abi.AnonExchangeABI.Events["NftDelisted"].ID, abi.AnonExchangeABI.Events["NftSold"].ID}},
			FromBlock: new(big.Int).SetUint64(begin),
			ToBlock:   new(big.Int).SetUint64(end),
		})
		if err != nil {
			// likely too many logs for the node, narrow the window
			if chunk > minSnapshotChunk {
				chunk = chunk / 2
				ctx.WithFields(log.Fields{
					"err":   err,
					"chunk": chunk,
					"begin": begin,
				}).Info("narrowing snapshot fetch window")
				continue
			}
			return nil, xerrors.Errorf("snapshot log fetch failed: %w", err)
		}
		for i := range logs {
			if err := r.reduceLog(ctx, reduced, &logs[i]); err != nil {
				return nil, err
			}
		}
		begin = end + 1
	}

	price, err := r.listingPrice(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &listing.Snapshot{EffectiveBlock: domain.BlockNumber(head)}
	for _, l := range reduced {
		if !filter.Match(l) {
			continue
		}
		if l.Status == listing.StatusListed {
			l.PriceInEth = price
		}
		snapshot.Listings = append(snapshot.Listings, *l)
	}
	return snapshot, nil
}

// listingPrice reads the exchange's fixed sale price, wei converted to eth.
// The price is a contract constant so one successful read is kept for the
// session.
func (r *readerImpl) listingPrice(ctx bCtx.Ctx) (*decimal.Decimal, error) {
	r.priceMu.Lock()
	defer r.priceMu.Unlock()

	if r.salePrice != nil {
		return r.salePrice, nil
	}
	res, err := r.call(ctx, r.exchangeAddress, abi.AnonExchangeABI, "nftSoldPrice")
	if err != nil {
		return nil, err
	}
	price := decimal.NewFromBigInt(res[0].(*big.Int), -18)
	r.salePrice = &price
	return r.salePrice, nil
}

func (r *readerImpl) reduceLog(ctx bCtx.Ctx, reduced map[listing.Id]*listing.NftListing, l *types.Log) error {
	switch l.Topics[0] {
	case abi.AnonExchangeABI.Events["NftListed"].ID:
		e, err := abi.ToNftListedLog(l)
		if err != nil {
			ctx.WithField("err", err).Error("failed to parse NftListed log")
			return err
		}
		lister := domain.Address(e.Lister.Hex()).ToLower()
		commitment := domain.Commitment(e.IdCommitment.String())
		id := listing.Id{
			ContractAddress: domain.Address(e.NftAddr.Hex()).ToLower(),
			TokenId:         domain.TokenId(e.TokenId.String()),
		}
		reduced[id] = &listing.NftListing{
			ContractAddress: id.ContractAddress,
			TokenId:         id.TokenId,
			Status:          listing.StatusListed,
			Lister:          &lister,
			Commitment:      &commitment,
		}
	case abi.AnonExchangeABI.Events["NftDelisted"].ID:
		e, err := abi.ToNftDelistedLog(l)
		if err != nil {
			return err
		}
		id := listing.Id{
			ContractAddress: domain.Address(e.NftAddr.Hex()).ToLower(),
			TokenId:         domain.TokenId(e.TokenId.String()),
		}
		if entry, ok := reduced[id]; ok {
			entry.Status = listing.StatusDelisted
			entry.Commitment = nil
		} else {
			reduced[id] = &listing.NftListing{
				ContractAddress: id.ContractAddress,
				TokenId:         id.TokenId,
				Status:          listing.StatusDelisted,
			}
		}
	case abi.AnonExchangeABI.Events["NftSold"].ID:
		e, err := abi.ToNftSoldLog(l)
		if err != nil {
			return err
		}
		id := listing.Id{
			ContractAddress: domain.Address(e.NftAddr.Hex()).ToLower(),
			TokenId:         domain.TokenId(e.TokenId.String()),
		}
		if entry, ok := reduced[id]; ok {
			entry.Status = listing.StatusSold
			entry.Commitment = nil
		} else {
			reduced[id] = &listing.NftListing{
				ContractAddress: id.ContractAddress,
				TokenId:         id.TokenId,
				Status:          listing.StatusSold,
			}
		}
	}
	return nil
}

func (r *readerImpl) call(ctx bCtx.Ctx, to common.Address, _abi ethabi.ABI, method string, params ...interface{}) ([]interface{}, error) {
	data, err := _abi.Pack(method, params...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"method": method,
			"err":    err,
		}).Error("abi.Pack failed")
		return nil, err
	}
	msg := ethereum.CallMsg{
		To:   &to,
		Data: data,
	}
	res, err := r.client.CallContract(ctx, msg, nil)
	if err != nil {
		ctx.WithField("err", err).Error("client.CallContract failed")
		return nil, err
	}
	return _abi.Unpack(method, res)
}

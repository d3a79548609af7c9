package tracker

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/anon-exchange/goapi/domain"
)

type logWithBlockTime struct {
	types.Log
	blockTime time.Time
}

func toDomainAddress(addr common.Address) domain.Address {
	return domain.Address(ToLowerHexStr(addr))
}

func ToLowerHexStr(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func toLogMeta(l *logWithBlockTime) *domain.LogMeta {
	return &domain.LogMeta{
		BlockNumber:     domain.BlockNumber(l.BlockNumber),
		BlockTime:       l.blockTime,
		TxHash:          domain.TxHash(l.TxHash.Hex()),
		TxIndex:         l.TxIndex,
		LogIndex:        l.Index,
		ContractAddress: toDomainAddress(l.Address),
	}
}

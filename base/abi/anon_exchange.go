package abi

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var AnonExchangeABI abi.ABI

var anonExchangeABI = `[{"type":"event","anonymous":false,"name":"NftListed","inputs":[{"type":"address","name":"lister","indexed":true},{"type":"address","name":"nftAddr","indexed":true},{"type":"uint256","name":"tokenId","indexed":true},{"type":"uint256","name":"idCommitment"}]},{"type":"event","anonymous":false,"name":"NftDelisted","inputs":[{"type":"address","name":"nftAddr","indexed":true},{"type":"uint256","name":"tokenId","indexed":true}]},{"type":"event","anonymous":false,"name":"NftSold","inputs":[{"type":"address","name":"nftAddr","indexed":true},{"type":"uint256","name":"tokenId","indexed":true}]},{"type":"function","name":"listNFT","stateMutability":"nonpayable","payable":false,"inputs":[{"type":"address","name":"nftAddr"},{"type":"uint256","name":"tokenId"},{"type":"uint256","name":"idCommitment"}],"outputs":[]},{"type":"function","name":"delistNFT","stateMutability":"nonpayable","payable":false,"inputs":[{"type":"address","name":"nftAddr"},{"type":"uint256","name":"tokenId"}],"outputs":[]},{"type":"function","name":"nftSoldPrice","constant":true,"stateMutability":"view","payable":false,"inputs":[],"outputs":[{"type":"uint256"}]}]`

func init() {
	_abi, err := abi.JSON(strings.NewReader(anonExchangeABI))
	if err != nil {
		panic("Failed to parse anon exchange abi")
	}
	AnonExchangeABI = _abi
}

type NftListedLog struct {
	Lister       common.Address // indexed
	NftAddr      common.Address // indexed
	TokenId      *big.Int       // indexed
	IdCommitment *big.Int
}

type NftDelistedLog struct {
	NftAddr common.Address // indexed
	TokenId *big.Int       // indexed
}

type NftSoldLog struct {
	NftAddr common.Address // indexed
	TokenId *big.Int       // indexed
}

func ToNftListedLog(log *types.Log) (*NftListedLog, error) {
	var listed NftListedLog
	if err := AnonExchangeABI.UnpackIntoInterface(&listed, "NftListed", log.Data); err != nil {
		return nil, err
	}
	listed.Lister = common.BytesToAddress(log.Topics[1].Bytes())
	listed.NftAddr = common.BytesToAddress(log.Topics[2].Bytes())
	listed.TokenId = new(big.Int).SetBytes(log.Topics[3].Bytes())
	return &listed, nil
}

func ToNftDelistedLog(log *types.Log) (*NftDelistedLog, error) {
	return &NftDelistedLog{
		NftAddr: common.BytesToAddress(log.Topics[1].Bytes()),
		TokenId: new(big.Int).SetBytes(log.Topics[2].Bytes()),
	}, nil
}

func ToNftSoldLog(log *types.Log) (*NftSoldLog, error) {
	return &NftSoldLog{
		NftAddr: common.BytesToAddress(log.Topics[1].Bytes()),
		TokenId: new(big.Int).SetBytes(log.Topics[2].Bytes()),
	}, nil
}

package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestToNftListedLog(t *testing.T) {
	lister := common.HexToAddress("0x1111111111111111111111111111111111111111")
	nftAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tokenId := big.NewInt(7)
	commitment, ok := new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495616", 10)
	require.True(t, ok)

	log := &types.Log{
		Topics: []common.Hash{
			AnonExchangeABI.Events["NftListed"].ID,
			common.BytesToHash(lister.Bytes()),
			common.BytesToHash(nftAddr.Bytes()),
			common.BigToHash(tokenId),
		},
		Data: common.LeftPadBytes(commitment.Bytes(), 32),
	}

	parsed, err := ToNftListedLog(log)
	require.NoError(t, err)
	require.Equal(t, lister, parsed.Lister)
	require.Equal(t, nftAddr, parsed.NftAddr)
	require.Equal(t, 0, parsed.TokenId.Cmp(tokenId))
	require.Equal(t, 0, parsed.IdCommitment.Cmp(commitment))
}

func TestToNftDelistedLog(t *testing.T) {
	nftAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tokenId := big.NewInt(9)

	log := &types.Log{
		Topics: []common.Hash{
			AnonExchangeABI.Events["NftDelisted"].ID,
			common.BytesToHash(nftAddr.Bytes()),
			common.BigToHash(tokenId),
		},
	}

	parsed, err := ToNftDelistedLog(log)
	require.NoError(t, err)
	require.Equal(t, nftAddr, parsed.NftAddr)
	require.Equal(t, 0, parsed.TokenId.Cmp(tokenId))
}

func TestPackListNFT(t *testing.T) {
	nftAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := AnonExchangeABI.Pack("listNFT", nftAddr, big.NewInt(7), big.NewInt(42))
	require.NoError(t, err)
	require.Len(t, data, 4+3*32)

	data, err = AnonExchangeABI.Pack("delistNFT", nftAddr, big.NewInt(7))
	require.NoError(t, err)
	require.Len(t, data, 4+2*32)
}

func TestNftSoldPriceRoundTrip(t *testing.T) {
	data, err := AnonExchangeABI.Pack("nftSoldPrice")
	require.NoError(t, err)
	require.Len(t, data, 4)

	wei, ok := new(big.Int).SetString("50000000000000000", 10)
	require.True(t, ok)
	res, err := AnonExchangeABI.Unpack("nftSoldPrice", common.LeftPadBytes(wei.Bytes(), 32))
	require.NoError(t, err)
	require.Equal(t, wei, res[0].(*big.Int))
}

func TestErc721PackApprove(t *testing.T) {
	operator := common.HexToAddress("0x3333333333333333333333333333333333333333")
	data, err := ERC721TokenABI.Pack("approve", operator, big.NewInt(7))
	require.NoError(t, err)
	require.Len(t, data, 4+2*32)
}

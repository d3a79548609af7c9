package wallet

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain/mocks"
	"github.com/anon-exchange/goapi/domain/wallet"
	"github.com/google/uuid"
)

func TestAwaitConfirmationPollsUntilMined(t *testing.T) {
	ctx := bCtx.Background()
	mockClient := &mocks.EthClientRepo{}
	subject := NewConfirmer(&ConfirmerCfg{
		Client:    mockClient,
		PollStart: time.Millisecond,
		PollLimit: 5 * time.Millisecond,
	})

	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0x01"}
	txHash := common.HexToHash("0x01")

	mockClient.On("TransactionReceipt", mock.Anything, txHash).
		Return(nil, ethereum.NotFound).Twice()
	mockClient.On("TransactionReceipt", mock.Anything, txHash).
		Return(&types.Receipt{
			TxHash:      txHash,
			BlockNumber: big.NewInt(100),
			Status:      types.ReceiptStatusSuccessful,
		}, nil)

	receipt, err := subject.AwaitConfirmation(ctx, handle)
	require.NoError(t, err)
	require.True(t, receipt.Success)
	require.EqualValues(t, 100, receipt.BlockNumber)
	mockClient.AssertNumberOfCalls(t, "TransactionReceipt", 3)
}

func TestAwaitConfirmationFetchesRevertReason(t *testing.T) {
	ctx := bCtx.Background()
	mockClient := &mocks.EthClientRepo{}
	subject := NewConfirmer(&ConfirmerCfg{
		Client:    mockClient,
		PollStart: time.Millisecond,
	})

	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0x02"}
	txHash := common.HexToHash("0x02")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	tx := types.NewTransaction(0, to, big.NewInt(0), 21000, big.NewInt(1), []byte{0x01})

	mockClient.On("TransactionReceipt", mock.Anything, txHash).
		Return(&types.Receipt{
			TxHash:      txHash,
			BlockNumber: big.NewInt(101),
			Status:      types.ReceiptStatusFailed,
		}, nil)
	mockClient.On("TransactionByHash", mock.Anything, txHash).Return(tx, false, nil)
	mockClient.On("CallContract", mock.Anything, mock.Anything, big.NewInt(101)).
		Return(nil, xerrors.New("execution reverted: not approved"))

	receipt, err := subject.AwaitConfirmation(ctx, handle)
	require.NoError(t, err)
	require.False(t, receipt.Success)
	require.Contains(t, receipt.RevertReason, "not approved")
}

func TestAwaitConfirmationTimesOut(t *testing.T) {
	ctx := bCtx.Background()
	mockClient := &mocks.EthClientRepo{}
	subject := NewConfirmer(&ConfirmerCfg{
		Client:      mockClient,
		PollStart:   time.Millisecond,
		PollLimit:   2 * time.Millisecond,
		WaitTimeout: 30 * time.Millisecond,
	})

	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0x03"}
	mockClient.On("TransactionReceipt", mock.Anything, common.HexToHash("0x03")).
		Return(nil, ethereum.NotFound)

	_, err := subject.AwaitConfirmation(ctx, handle)
	require.Error(t, err)
}

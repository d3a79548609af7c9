package tracker

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/listing"
	"github.com/anon-exchange/goapi/domain/mocks"
)

var mockCtx = bCtx.Background()

type listingEventHandlerSuite struct {
	suite.Suite
	mockEventUC *mocks.EventUseCase
	subject     EventHandler
}

func TestListingEventHandler(t *testing.T) {
	suite.Run(t, new(listingEventHandlerSuite))
}

func (s *listingEventHandlerSuite) SetupTest() {
	s.mockEventUC = &mocks.EventUseCase{}
	s.subject = NewListingEventHandler(&ListingEventHandlerCfg{
		ChainId:      31337,
		EventUseCase: s.mockEventUC,
	})
}

func (s *listingEventHandlerSuite) TestFilterTopicsCoverAllEvents() {
	topics := s.subject.GetFilterTopics()
	s.Len(topics, 1)
	s.ElementsMatch([]common.Hash{nftListedSig, nftDelistedSig, nftSoldSig}, topics[0])
}

func (s *listingEventHandlerSuite) TestProcessListedEvent() {
	lister := common.HexToAddress("0x1111111111111111111111111111111111111111")
	nftAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	blkTime := time.Unix(1700000000, 0)

	l := logWithBlockTime{
		Log: types.Log{
			Address:     nftAddr,
			BlockNumber: 90,
			Topics: []common.Hash{
				nftListedSig,
				common.BytesToHash(lister.Bytes()),
				common.BytesToHash(nftAddr.Bytes()),
				common.BigToHash(big.NewInt(7)),
			},
			Data: common.LeftPadBytes(big.NewInt(42).Bytes(), 32),
		},
		blockTime: blkTime,
	}

	s.mockEventUC.On("NftListed", mockCtx,
		&listing.NftListedEvent{
			Lister:       toDomainAddress(lister),
			NftAddr:      toDomainAddress(nftAddr),
			TokenId:      domain.TokenId("7"),
			IdCommitment: domain.Commitment("42"),
		},
		mock.MatchedBy(func(meta *domain.LogMeta) bool {
			return meta.BlockNumber == 90 && meta.BlockTime.Equal(blkTime)
		}),
	).Return(nil)

	s.NoError(s.subject.ProcessEvents(mockCtx, []logWithBlockTime{l}))
	s.mockEventUC.AssertExpectations(s.T())
}

func (s *listingEventHandlerSuite) TestProcessDelistedAndSoldEvents() {
	nftAddr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	mk := func(sig common.Hash) logWithBlockTime {
		return logWithBlockTime{
			Log: types.Log{
				Address:     nftAddr,
				BlockNumber: 95,
				Topics: []common.Hash{
					sig,
					common.BytesToHash(nftAddr.Bytes()),
					common.BigToHash(big.NewInt(9)),
				},
			},
		}
	}

	s.mockEventUC.On("NftDelisted", mockCtx,
		&listing.NftDelistedEvent{NftAddr: toDomainAddress(nftAddr), TokenId: domain.TokenId("9")},
		mock.Anything,
	).Return(nil)
	s.mockEventUC.On("NftSold", mockCtx,
		&listing.NftSoldEvent{NftAddr: toDomainAddress(nftAddr), TokenId: domain.TokenId("9")},
		mock.Anything,
	).Return(nil)

	s.NoError(s.subject.ProcessEvents(mockCtx, []logWithBlockTime{mk(nftDelistedSig), mk(nftSoldSig)}))
	s.mockEventUC.AssertExpectations(s.T())
}

func (s *listingEventHandlerSuite) TestUnknownSignatureIsSkipped() {
	l := logWithBlockTime{
		Log: types.Log{
			Topics: []common.Hash{common.HexToHash("0xdeadbeef")},
		},
	}
	s.NoError(s.subject.ProcessEvents(mockCtx, []logWithBlockTime{l}))
	s.mockEventUC.AssertNotCalled(s.T(), "NftListed", mock.Anything, mock.Anything, mock.Anything)
}

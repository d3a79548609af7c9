package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/viney-shih/goroutines"

	bCtx "github.com/anon-exchange/goapi/base/ctx"
	"github.com/anon-exchange/goapi/domain"
	"github.com/anon-exchange/goapi/domain/identity"
	"github.com/anon-exchange/goapi/domain/listing"
	"github.com/anon-exchange/goapi/domain/mocks"
	"github.com/anon-exchange/goapi/domain/wallet"
	"github.com/google/uuid"
)

var mockCtx = bCtx.Background()

const (
	testExchange = domain.Address("0xe0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0")
	testSession  = domain.Address("0x5e555e555e555e555e555e555e555e555e555e55")
)

type lifecycleSuite struct {
	suite.Suite
	mockRegistry  *mocks.Registry
	mockReader    *mocks.ChainReader
	mockSubmitter *mocks.Submitter
	mockConfirmer *mocks.Confirmer
	mockManager   *mocks.Manager
	pool          *goroutines.Pool
	sessionCtx    bCtx.Ctx
	cancelSession func()
	subject       listing.LifecycleUseCase
}

func TestLifecycle(t *testing.T) {
	suite.Run(t, new(lifecycleSuite))
}

func (s *lifecycleSuite) SetupTest() {
	s.mockRegistry = &mocks.Registry{}
	s.mockReader = &mocks.ChainReader{}
	s.mockSubmitter = &mocks.Submitter{}
	s.mockConfirmer = &mocks.Confirmer{}
	s.mockManager = &mocks.Manager{}
	s.pool = goroutines.NewPool(4, goroutines.WithTaskQueueLength(16))
	s.sessionCtx, s.cancelSession = bCtx.WithCancel(bCtx.Background())
	s.subject = NewLifecycle(&LifecycleCfg{
		ChainId:         domain.ChainId(31337),
		ExchangeAddress: testExchange,
		SessionAddress:  testSession,
		SessionCtx:      s.sessionCtx,
		Registry:        s.mockRegistry,
		ChainReader:     s.mockReader,
		Submitter:       s.mockSubmitter,
		Confirmer:       s.mockConfirmer,
		IdentityManager: s.mockManager,
		Pool:            s.pool,
	})
}

func (s *lifecycleSuite) TearDownTest() {
	s.cancelSession()
	s.pool.Release()
}

func (s *lifecycleSuite) entry(id listing.Id, status listing.Status) *listing.NftListing {
	e := &listing.NftListing{
		ContractAddress: id.ContractAddress,
		TokenId:         id.TokenId,
		Status:          status,
	}
	if status == listing.StatusListed {
		c := domain.Commitment("41")
		e.Commitment = &c
	}
	return e
}

func (s *lifecycleSuite) awaitResult() *listing.TxResult {
	select {
	case res := <-s.subject.Results():
		return res
	case <-time.After(3 * time.Second):
		s.FailNow("no tx result published")
		return nil
	}
}

func (s *lifecycleSuite) TestLegalActionGrid() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}

	cases := []struct {
		status   listing.Status
		approved bool
		expected listing.ActionKind
	}{
		{listing.StatusNotListed, false, listing.ActionApprove},
		{listing.StatusNotListed, true, listing.ActionList},
		{listing.StatusDelisted, false, listing.ActionApprove},
		{listing.StatusDelisted, true, listing.ActionList},
		{listing.StatusListed, false, listing.ActionDelist},
		{listing.StatusListed, true, listing.ActionDelist},
		{listing.StatusSold, false, listing.ActionNone},
		{listing.StatusSold, true, listing.ActionNone},
	}
	for _, c := range cases {
		s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, c.status), nil).Once()
		s.mockReader.On("ReadApproval", mockCtx, id, testExchange).Return(c.approved, nil).Once()

		action, err := s.subject.LegalAction(mockCtx, id)
		s.NoError(err)
		s.Equal(c.expected, action, "status=%s approved=%v", c.status, c.approved)
	}
}

func (s *lifecycleSuite) TestLegalActionUnknownKey() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	s.mockRegistry.On("Get", mockCtx, id).Return(nil, domain.ErrUnknownKey)

	_, err := s.subject.LegalAction(mockCtx, id)
	s.ErrorIs(err, domain.ErrUnknownKey)
}

func (s *lifecycleSuite) TestPerformRejectsIllegalAction() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusListed), nil)

	_, err := s.subject.Perform(mockCtx, id, listing.ActionList)
	s.ErrorIs(err, domain.ErrInvalidTransition)

	_, err = s.subject.Perform(mockCtx, id, listing.ActionNone)
	s.ErrorIs(err, domain.ErrInvalidTransition)

	s.mockSubmitter.AssertNotCalled(s.T(), "Submit", mock.Anything, mock.Anything)
}

func (s *lifecycleSuite) TestPerformListConfirmsAndRotates() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0xt1"}

	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusNotListed), nil)
	s.mockReader.On("ReadApproval", mockCtx, id, testExchange).Return(true, nil)
	s.mockManager.On("Current").Return(&identity.Identity{Seed: "seed", Commitment: "42"})
	s.mockSubmitter.On("Submit", mockCtx, mock.MatchedBy(func(spec *wallet.CallSpec) bool {
		return spec.To == testExchange && len(spec.Data) > 4
	})).Return(handle, nil)
	s.mockConfirmer.On("AwaitConfirmation", mock.Anything, handle).
		Return(&wallet.Receipt{TxHash: "0xt1", BlockNumber: 100, Success: true}, nil)
	s.mockRegistry.On("SetStatus", mock.Anything, id, mock.MatchedBy(func(p *listing.StatusPatch) bool {
		return p.Status == listing.StatusListed &&
			p.Commitment != nil && *p.Commitment == domain.Commitment("42") &&
			p.Lister != nil && *p.Lister == testSession &&
			p.BlockNumber != nil && *p.BlockNumber == domain.BlockNumber(100)
	})).Return(nil)
	s.mockManager.On("Rotate", mock.Anything).Return(&identity.Identity{Seed: "next", Commitment: "43"}, nil)

	got, err := s.subject.Perform(mockCtx, id, listing.ActionList)
	s.NoError(err)
	s.Equal(handle, got)

	res := s.awaitResult()
	s.NoError(res.Err)
	s.Equal(listing.ActionList, res.Action)

	s.mockRegistry.AssertExpectations(s.T())
	s.mockManager.AssertCalled(s.T(), "Rotate", mock.Anything)
}

func (s *lifecycleSuite) TestPerformListWithoutIdentity() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusNotListed), nil)
	s.mockReader.On("ReadApproval", mockCtx, id, testExchange).Return(true, nil)
	s.mockManager.On("Current").Return(nil)

	_, err := s.subject.Perform(mockCtx, id, listing.ActionList)
	s.ErrorIs(err, domain.ErrNoActiveIdentity)
}

func (s *lifecycleSuite) TestReusedCommitmentIsStale() {
	id1 := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	id2 := listing.Id{ContractAddress: "0xa1", TokenId: "8"}
	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0xt1"}

	// the manager keeps answering with the same identity, simulating a
	// rotation that did not take
	s.mockManager.On("Current").Return(&identity.Identity{Seed: "seed", Commitment: "42"})
	s.mockManager.On("Rotate", mock.Anything).Return(&identity.Identity{Seed: "seed", Commitment: "42"}, nil)
	for _, id := range []listing.Id{id1, id2} {
		s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusNotListed), nil)
		s.mockReader.On("ReadApproval", mockCtx, id, testExchange).Return(true, nil)
	}
	s.mockSubmitter.On("Submit", mockCtx, mock.Anything).Return(handle, nil)
	s.mockConfirmer.On("AwaitConfirmation", mock.Anything, handle).
		Return(&wallet.Receipt{TxHash: "0xt1", BlockNumber: 100, Success: true}, nil)
	s.mockRegistry.On("SetStatus", mock.Anything, id1, mock.Anything).Return(nil)

	_, err := s.subject.Perform(mockCtx, id1, listing.ActionList)
	s.NoError(err)
	res := s.awaitResult()
	s.NoError(res.Err)

	_, err = s.subject.Perform(mockCtx, id2, listing.ActionList)
	s.ErrorIs(err, domain.ErrStaleIdentity)
}

func (s *lifecycleSuite) TestFailedListLeavesStateUntouched() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0xt1"}

	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusNotListed), nil)
	s.mockReader.On("ReadApproval", mockCtx, id, testExchange).Return(true, nil)
	s.mockManager.On("Current").Return(&identity.Identity{Seed: "seed", Commitment: "42"})
	s.mockSubmitter.On("Submit", mockCtx, mock.Anything).Return(handle, nil)
	s.mockConfirmer.On("AwaitConfirmation", mock.Anything, handle).
		Return(&wallet.Receipt{TxHash: "0xt1", BlockNumber: 100, Success: false, RevertReason: "not approved"}, nil)

	_, err := s.subject.Perform(mockCtx, id, listing.ActionList)
	s.NoError(err)

	res := s.awaitResult()
	s.ErrorIs(res.Err, domain.ErrTransactionFailed)
	s.mockRegistry.AssertNotCalled(s.T(), "SetStatus", mock.Anything, mock.Anything, mock.Anything)
	s.mockManager.AssertNotCalled(s.T(), "Rotate", mock.Anything)

	// the commitment is freed again, listing can be retried
	_, err = s.subject.Perform(mockCtx, id, listing.ActionList)
	s.NoError(err)
	res = s.awaitResult()
	s.ErrorIs(res.Err, domain.ErrTransactionFailed)
}

func (s *lifecycleSuite) TestPerformDelist() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0xt2"}

	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusListed), nil)
	s.mockSubmitter.On("Submit", mockCtx, mock.MatchedBy(func(spec *wallet.CallSpec) bool {
		return spec.To == testExchange
	})).Return(handle, nil)
	s.mockConfirmer.On("AwaitConfirmation", mock.Anything, handle).
		Return(&wallet.Receipt{TxHash: "0xt2", BlockNumber: 120, Success: true}, nil)
	s.mockRegistry.On("SetStatus", mock.Anything, id, mock.MatchedBy(func(p *listing.StatusPatch) bool {
		return p.Status == listing.StatusDelisted && p.Commitment == nil &&
			p.BlockNumber != nil && *p.BlockNumber == domain.BlockNumber(120)
	})).Return(nil)

	_, err := s.subject.Perform(mockCtx, id, listing.ActionDelist)
	s.NoError(err)

	res := s.awaitResult()
	s.NoError(res.Err)
	s.mockRegistry.AssertExpectations(s.T())
}

func (s *lifecycleSuite) TestApproveDoesNotWriteRegistry() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0xt3"}

	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusNotListed), nil)
	s.mockReader.On("ReadApproval", mockCtx, id, testExchange).Return(false, nil)
	s.mockSubmitter.On("Submit", mockCtx, mock.MatchedBy(func(spec *wallet.CallSpec) bool {
		return spec.To == id.ContractAddress
	})).Return(handle, nil)
	s.mockConfirmer.On("AwaitConfirmation", mock.Anything, handle).
		Return(&wallet.Receipt{TxHash: "0xt3", BlockNumber: 90, Success: true}, nil)

	_, err := s.subject.Perform(mockCtx, id, listing.ActionApprove)
	s.NoError(err)

	res := s.awaitResult()
	s.NoError(res.Err)
	s.Equal(listing.ActionApprove, res.Action)
	s.mockRegistry.AssertNotCalled(s.T(), "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *lifecycleSuite) TestTeardownDiscardsLateResult() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	handle := &wallet.TxHandle{Id: uuid.New(), TxHash: "0xt4"}

	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusListed), nil)
	s.mockSubmitter.On("Submit", mockCtx, mock.Anything).Return(handle, nil)
	s.mockConfirmer.On("AwaitConfirmation", mock.Anything, handle).
		Run(func(mock.Arguments) { s.cancelSession() }).
		Return(&wallet.Receipt{TxHash: "0xt4", BlockNumber: 120, Success: true}, nil)

	_, err := s.subject.Perform(mockCtx, id, listing.ActionDelist)
	s.NoError(err)

	select {
	case res := <-s.subject.Results():
		s.FailNow("result published after teardown", "%+v", res)
	case <-time.After(300 * time.Millisecond):
	}
	s.mockRegistry.AssertNotCalled(s.T(), "SetStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (s *lifecycleSuite) TestImportNft() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}

	s.mockRegistry.On("Get", mockCtx, id).Return(nil, domain.ErrUnknownKey)
	s.mockReader.On("OwnerOf", mockCtx, id).Return(testSession, nil)
	s.mockRegistry.On("UpsertLocal", mockCtx, mock.MatchedBy(func(l *listing.NftListing) bool {
		return l.Status == listing.StatusNotListed && l.Lister != nil && *l.Lister == testSession
	})).Return(nil)

	s.NoError(s.subject.ImportNft(mockCtx, id))
	s.mockRegistry.AssertExpectations(s.T())
}

func (s *lifecycleSuite) TestImportNftConflict() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	s.mockRegistry.On("Get", mockCtx, id).Return(s.entry(id, listing.StatusNotListed), nil)

	s.ErrorIs(s.subject.ImportNft(mockCtx, id), domain.ErrConflict)
}

func (s *lifecycleSuite) TestImportNftNotOwner() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	s.mockRegistry.On("Get", mockCtx, id).Return(nil, domain.ErrUnknownKey)
	s.mockReader.On("OwnerOf", mockCtx, id).Return(domain.Address("0xother"), nil)

	s.ErrorIs(s.subject.ImportNft(mockCtx, id), domain.ErrNotOwner)
	s.mockRegistry.AssertNotCalled(s.T(), "UpsertLocal", mock.Anything, mock.Anything)
}

func (s *lifecycleSuite) TestTrackMinted() {
	id := listing.Id{ContractAddress: "0xa1", TokenId: "7"}
	s.mockRegistry.On("UpsertLocal", mockCtx, mock.MatchedBy(func(l *listing.NftListing) bool {
		return l.Status == listing.StatusNotListed
	})).Return(nil)

	s.NoError(s.subject.TrackMinted(mockCtx, id))
	s.mockRegistry.AssertExpectations(s.T())
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
	"github.com/paymybuddy/backend/internal/core/services"
)

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	var account *domain.Account
	if args.Get(0) != nil {
		account = args.Get(0).(*domain.Account)
	}
	return account, args.Error(1)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// --- Mock TransferRepository ---
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) SaveTransfer(ctx context.Context, transfer domain.Transfer) (*domain.Transfer, error) {
	args := m.Called(ctx, transfer)
	var saved *domain.Transfer
	if args.Get(0) != nil {
		saved = args.Get(0).(*domain.Transfer)
	}
	return saved, args.Error(1)
}

func (m *MockTransferRepository) ListTransfersByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	args := m.Called(ctx, accountID)
	var transfers []domain.Transfer
	if args.Get(0) != nil {
		transfers = args.Get(0).([]domain.Transfer)
	}
	return transfers, args.Error(1)
}

// --- Mock Publisher ---
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event any) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Test Suite ---
type TransferServiceTestSuite struct {
	suite.Suite
	mockAccountRepo  *MockAccountRepository
	mockTransferRepo *MockTransferRepository
	mockPublisher    *MockPublisher
	service          portssvc.TransferSvcFacade

	sender   domain.Account
	receiver domain.Account
}

func (s *TransferServiceTestSuite) SetupTest() {
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockTransferRepo = new(MockTransferRepository)
	s.mockPublisher = new(MockPublisher)
	s.service = services.NewTransferService(s.mockTransferRepo, s.mockAccountRepo, s.mockPublisher)

	s.sender = domain.Account{
		AccountID: "acc-sender",
		Email:     "alice@example.com",
		Balance:   decimal.RequireFromString("200.00"),
	}
	s.receiver = domain.Account{
		AccountID: "acc-receiver",
		Email:     "bob@example.com",
		Balance:   decimal.RequireFromString("50.00"),
	}
}

// --- Transfer Tests ---

func (s *TransferServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	amount := decimal.RequireFromString("125.50")

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(&s.receiver, nil).Once()
	s.mockTransferRepo.On("SaveTransfer", ctx, mock.MatchedBy(func(t domain.Transfer) bool {
		return t.SenderID == "acc-sender" &&
			t.ReceiverID == "acc-receiver" &&
			t.Amount.Equal(amount) &&
			t.Memo == "rent" &&
			!t.Timestamp.IsZero()
	})).Return(&domain.Transfer{
		TransferID: 1,
		SenderID:   "acc-sender",
		ReceiverID: "acc-receiver",
		Amount:     amount,
		Memo:       "rent",
		Timestamp:  time.Now().UTC(),
	}, nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.AnythingOfType("domain.TransferCompleted")).Return(nil).Once()

	saved, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", amount, "rent")

	s.Require().NoError(err)
	s.Require().NotNil(saved)
	s.Equal(int64(1), saved.TransferID)
	s.True(saved.Amount.Equal(amount))

	s.mockAccountRepo.AssertExpectations(s.T())
	s.mockTransferRepo.AssertExpectations(s.T())
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *TransferServiceTestSuite) TestTransfer_SelfTransfer() {
	ctx := context.Background()

	saved, err := s.service.Transfer(ctx, "alice@example.com", "alice@example.com", decimal.RequireFromString("10.00"), "")

	s.Require().ErrorIs(err, services.ErrSelfTransfer)
	s.Nil(saved)
	// The self check runs before any repository access.
	s.mockAccountRepo.AssertNotCalled(s.T(), "FindAccountByEmail", mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestTransfer_SelfTransferCaseInsensitive() {
	ctx := context.Background()

	_, err := s.service.Transfer(ctx, "Alice@Example.com", "alice@example.com", decimal.RequireFromString("10.00"), "")

	s.Require().ErrorIs(err, services.ErrSelfTransfer)
}

func (s *TransferServiceTestSuite) TestTransfer_SelfTransferWinsOverBadAmount() {
	ctx := context.Background()

	// Both checks would fail; the self check is reported first.
	_, err := s.service.Transfer(ctx, "alice@example.com", "alice@example.com", decimal.Zero, "")

	s.Require().ErrorIs(err, services.ErrSelfTransfer)
}

func (s *TransferServiceTestSuite) TestTransfer_ZeroAmount() {
	ctx := context.Background()

	_, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", decimal.Zero, "")

	s.Require().ErrorIs(err, services.ErrInvalidAmount)
	s.mockAccountRepo.AssertNotCalled(s.T(), "FindAccountByEmail", mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestTransfer_NegativeAmount() {
	ctx := context.Background()

	_, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", decimal.RequireFromString("-5.00"), "")

	s.Require().ErrorIs(err, services.ErrInvalidAmount)
}

func (s *TransferServiceTestSuite) TestTransfer_TooManyDecimalPlaces() {
	ctx := context.Background()

	_, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", decimal.RequireFromString("10.001"), "")

	s.Require().ErrorIs(err, services.ErrInvalidAmount)
}

func (s *TransferServiceTestSuite) TestTransfer_MemoTooLong() {
	ctx := context.Background()
	memo := make([]byte, domain.MaxMemoLength+1)
	for i := range memo {
		memo[i] = 'x'
	}

	_, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", decimal.RequireFromString("10.00"), string(memo))

	s.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (s *TransferServiceTestSuite) TestTransfer_SenderNotFound() {
	ctx := context.Background()

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.Transfer(ctx, "ghost@example.com", "bob@example.com", decimal.RequireFromString("10.00"), "")

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
	s.Contains(err.Error(), "sender")
	// Receiver lookup never happens once the sender is unknown.
	s.mockAccountRepo.AssertNumberOfCalls(s.T(), "FindAccountByEmail", 1)
}

func (s *TransferServiceTestSuite) TestTransfer_ReceiverNotFound() {
	ctx := context.Background()

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.Transfer(ctx, "alice@example.com", "ghost@example.com", decimal.RequireFromString("10.00"), "")

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
	s.Contains(err.Error(), "receiver")
	s.mockTransferRepo.AssertNotCalled(s.T(), "SaveTransfer", mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestTransfer_InsufficientFunds() {
	ctx := context.Background()

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(&s.receiver, nil).Once()

	_, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", decimal.RequireFromString("200.01"), "")

	s.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.mockTransferRepo.AssertNotCalled(s.T(), "SaveTransfer", mock.Anything, mock.Anything)
	s.mockPublisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestTransfer_ExactBalanceSucceeds() {
	ctx := context.Background()
	amount := s.sender.Balance

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(&s.receiver, nil).Once()
	s.mockTransferRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).Return(&domain.Transfer{
		TransferID: 7,
		SenderID:   "acc-sender",
		ReceiverID: "acc-receiver",
		Amount:     amount,
		Timestamp:  time.Now().UTC(),
	}, nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(nil).Once()

	saved, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", amount, "")

	s.Require().NoError(err)
	s.Require().NotNil(saved)
}

func (s *TransferServiceTestSuite) TestTransfer_ConcurrentDebitLosesRace() {
	ctx := context.Background()

	// The read-side balance check passed, but the authoritative check inside
	// the storage transaction rejected the debit.
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(&s.receiver, nil).Once()
	s.mockTransferRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).Return(nil, apperrors.ErrInsufficientFunds).Once()

	_, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", decimal.RequireFromString("10.00"), "")

	s.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.mockPublisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *TransferServiceTestSuite) TestTransfer_PublishFailureDoesNotFailTransfer() {
	ctx := context.Background()
	amount := decimal.RequireFromString("10.00")

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(&s.receiver, nil).Once()
	s.mockTransferRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).Return(&domain.Transfer{
		TransferID: 3,
		SenderID:   "acc-sender",
		ReceiverID: "acc-receiver",
		Amount:     amount,
		Timestamp:  time.Now().UTC(),
	}, nil).Once()
	s.mockPublisher.On("Publish", ctx, mock.Anything).Return(assert.AnError).Once()

	saved, err := s.service.Transfer(ctx, "alice@example.com", "bob@example.com", amount, "")

	// The transfer has committed; a broker failure is logged and swallowed.
	s.Require().NoError(err)
	s.Require().NotNil(saved)
}

func (s *TransferServiceTestSuite) TestTransfer_NilPublisher() {
	ctx := context.Background()
	service := services.NewTransferService(s.mockTransferRepo, s.mockAccountRepo, nil)
	amount := decimal.RequireFromString("10.00")

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockAccountRepo.On("FindAccountByEmail", ctx, "bob@example.com").Return(&s.receiver, nil).Once()
	s.mockTransferRepo.On("SaveTransfer", ctx, mock.AnythingOfType("domain.Transfer")).Return(&domain.Transfer{
		TransferID: 4,
		SenderID:   "acc-sender",
		ReceiverID: "acc-receiver",
		Amount:     amount,
		Timestamp:  time.Now().UTC(),
	}, nil).Once()

	saved, err := service.Transfer(ctx, "alice@example.com", "bob@example.com", amount, "")

	s.Require().NoError(err)
	s.Require().NotNil(saved)
}

// --- History Tests ---

func (s *TransferServiceTestSuite) TestHistory_Success() {
	ctx := context.Background()
	transfers := []domain.Transfer{
		{TransferID: 2, SenderID: "acc-sender", ReceiverID: "acc-receiver", Amount: decimal.RequireFromString("5.00")},
		{TransferID: 1, SenderID: "acc-receiver", ReceiverID: "acc-sender", Amount: decimal.RequireFromString("3.00")},
	}

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockTransferRepo.On("ListTransfersByAccountID", ctx, "acc-sender").Return(transfers, nil).Once()

	got, err := s.service.History(ctx, "Alice@Example.com")

	s.Require().NoError(err)
	s.Len(got, 2)
}

func (s *TransferServiceTestSuite) TestHistory_EmptyIsNotNil() {
	ctx := context.Background()

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "alice@example.com").Return(&s.sender, nil).Once()
	s.mockTransferRepo.On("ListTransfersByAccountID", ctx, "acc-sender").Return(nil, nil).Once()

	got, err := s.service.History(ctx, "alice@example.com")

	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *TransferServiceTestSuite) TestHistory_AccountNotFound() {
	ctx := context.Background()

	s.mockAccountRepo.On("FindAccountByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.History(ctx, "ghost@example.com")

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func TestTransferServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransferServiceTestSuite))
}

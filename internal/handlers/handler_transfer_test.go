package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
	"github.com/paymybuddy/backend/internal/core/services"
	"github.com/paymybuddy/backend/internal/dto"
	"github.com/paymybuddy/backend/internal/handlers"
	"github.com/paymybuddy/backend/internal/middleware"
)

// --- Mock TransferService ---
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Transfer(ctx context.Context, senderEmail, receiverEmail string, amount decimal.Decimal, memo string) (*domain.Transfer, error) {
	args := m.Called(ctx, senderEmail, receiverEmail, amount, memo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferService) History(ctx context.Context, email string) ([]domain.Transfer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

var _ portssvc.TransferSvcFacade = (*MockTransferService)(nil)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) VerifyCredentials(ctx context.Context, email, password string) (*domain.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ChangePassword(ctx context.Context, accountID string, req dto.ChangePasswordRequest) error {
	args := m.Called(ctx, accountID, req)
	return args.Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Test Suite ---
type TransferHandlerTestSuite struct {
	suite.Suite
	router              *gin.Engine
	mockTransferService *MockTransferService
	mockAccountService  *MockAccountService
	jwtSecret           string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *TransferHandlerTestSuite) generateTestToken(accountID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "paymybuddy-test",
		Subject:   accountID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *TransferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dgt0", func(fl validator.FieldLevel) bool {
			d, ok := fl.Field().Interface().(decimal.Decimal)
			return ok && d.IsPositive()
		})
	}

	suite.mockTransferService = new(MockTransferService)
	suite.mockAccountService = new(MockAccountService)

	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	handlers.RegisterTransferRoutes(v1, suite.mockTransferService, suite.mockAccountService)
}

func (suite *TransferHandlerTestSuite) doRequest(method, url, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *TransferHandlerTestSuite) TestCreateTransfer_Success() {
	caller := &domain.Account{AccountID: "acc-1", Email: "alice@example.com"}
	amount := decimal.RequireFromString("125.50")

	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").Return(caller, nil).Once()
	suite.mockTransferService.On("Transfer", mock.Anything, "alice@example.com", "bob@example.com", mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(amount)
	}), "rent").Return(&domain.Transfer{
		TransferID: 42,
		SenderID:   "acc-1",
		ReceiverID: "acc-2",
		Amount:     amount,
		Memo:       "rent",
		Timestamp:  time.Now().UTC(),
	}, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", suite.generateTestToken("acc-1"), gin.H{
		"receiverEmail": "bob@example.com",
		"amount":        "125.50",
		"memo":          "rent",
	})

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.TransferResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(42), resp.TransferID)
	suite.True(resp.Amount.Equal(amount))

	suite.mockTransferService.AssertExpectations(suite.T())
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_MissingToken() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", "", gin.H{
		"receiverEmail": "bob@example.com",
		"amount":        "10.00",
	})

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_ZeroAmountRejectedByBinding() {
	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", suite.generateTestToken("acc-1"), gin.H{
		"receiverEmail": "bob@example.com",
		"amount":        "0",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockTransferService.AssertNotCalled(suite.T(), "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_SelfTransfer() {
	caller := &domain.Account{AccountID: "acc-1", Email: "alice@example.com"}

	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").Return(caller, nil).Once()
	suite.mockTransferService.On("Transfer", mock.Anything, "alice@example.com", "alice@example.com", mock.Anything, "").
		Return(nil, services.ErrSelfTransfer).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", suite.generateTestToken("acc-1"), gin.H{
		"receiverEmail": "alice@example.com",
		"amount":        "10.00",
	})

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_InsufficientFunds() {
	caller := &domain.Account{AccountID: "acc-1", Email: "alice@example.com"}

	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").Return(caller, nil).Once()
	suite.mockTransferService.On("Transfer", mock.Anything, "alice@example.com", "bob@example.com", mock.Anything, "").
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", suite.generateTestToken("acc-1"), gin.H{
		"receiverEmail": "bob@example.com",
		"amount":        "10.00",
	})

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *TransferHandlerTestSuite) TestCreateTransfer_ReceiverNotFound() {
	caller := &domain.Account{AccountID: "acc-1", Email: "alice@example.com"}

	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").Return(caller, nil).Once()
	suite.mockTransferService.On("Transfer", mock.Anything, "alice@example.com", "ghost@example.com", mock.Anything, "").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/transfers", suite.generateTestToken("acc-1"), gin.H{
		"receiverEmail": "ghost@example.com",
		"amount":        "10.00",
	})

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TransferHandlerTestSuite) TestListTransfers_Success() {
	caller := &domain.Account{AccountID: "acc-1", Email: "alice@example.com"}
	transfers := []domain.Transfer{
		{TransferID: 2, SenderID: "acc-1", ReceiverID: "acc-2", Amount: decimal.RequireFromString("5.00"), Timestamp: time.Now().UTC()},
		{TransferID: 1, SenderID: "acc-2", ReceiverID: "acc-1", Amount: decimal.RequireFromString("3.00"), Timestamp: time.Now().UTC().Add(-time.Hour)},
	}

	suite.mockAccountService.On("GetAccountByID", mock.Anything, "acc-1").Return(caller, nil).Once()
	suite.mockTransferService.On("History", mock.Anything, "alice@example.com").Return(transfers, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/transfers", suite.generateTestToken("acc-1"), nil)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListTransfersResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Transfers, 2)
	suite.Equal(int64(2), resp.Transfers[0].TransferID)
}

func TestTransferHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TransferHandlerTestSuite))
}

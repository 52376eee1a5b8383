package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portsevents "github.com/paymybuddy/backend/internal/core/ports/events"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
	"github.com/paymybuddy/backend/internal/middleware"
)

var (
	ErrSelfTransfer  = errors.New("cannot transfer money to yourself")
	ErrInvalidAmount = errors.New("transfer amount must be positive")
)

// transferService implements the transfer engine: validation in a fixed,
// short-circuiting order, then atomic execution through the transfer
// repository.
type transferService struct {
	accountRepo  portsrepo.AccountRepository
	transferRepo portsrepo.TransferRepository
	publisher    portsevents.Publisher // optional; nil disables events
}

// NewTransferService creates a new TransferService. publisher may be nil.
func NewTransferService(transferRepo portsrepo.TransferRepository, accountRepo portsrepo.AccountRepository, publisher portsevents.Publisher) portssvc.TransferSvcFacade {
	return &transferService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		publisher:    publisher,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// normalizeEmail lowercases an email for case-insensitive comparison and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Transfer validates and executes a value movement between two accounts.
//
// Validation order, each step short-circuiting:
//  1. sender and receiver must be distinct (case-insensitive emails)
//  2. amount must be strictly positive with at most two decimal places
//  3. both accounts must exist
//  4. sender balance must cover the amount
//
// The balance check here gives a clean early failure; the authoritative check
// happens again inside SaveTransfer under the row locks, so a concurrent
// transfer draining the sender between the two checks still fails safely.
func (s *transferService) Transfer(ctx context.Context, senderEmail, receiverEmail string, amount decimal.Decimal, memo string) (*domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	senderEmail = normalizeEmail(senderEmail)
	receiverEmail = normalizeEmail(receiverEmail)

	if senderEmail == receiverEmail {
		logger.Warn("Self transfer attempt", slog.String("email", senderEmail))
		return nil, ErrSelfTransfer
	}

	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.Exponent() < -2 {
		return nil, fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}

	if len(memo) > domain.MaxMemoLength {
		return nil, fmt.Errorf("%w: memo exceeds %d characters", apperrors.ErrValidation, domain.MaxMemoLength)
	}

	sender, err := s.accountRepo.FindAccountByEmail(ctx, senderEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: sender %s", apperrors.ErrNotFound, senderEmail)
		}
		logger.Error("Failed to resolve sender account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to resolve sender account: %w", err)
	}

	receiver, err := s.accountRepo.FindAccountByEmail(ctx, receiverEmail)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: receiver %s", apperrors.ErrNotFound, receiverEmail)
		}
		logger.Error("Failed to resolve receiver account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to resolve receiver account: %w", err)
	}

	// Fees are out of scope; when they return, the surcharge joins the amount
	// in this comparison.
	totalDeducted := amount
	if sender.Balance.LessThan(totalDeducted) {
		logger.Warn("Insufficient funds for transfer",
			slog.String("sender_id", sender.AccountID),
			slog.String("balance", sender.Balance.String()),
			slog.String("required", totalDeducted.String()),
		)
		return nil, apperrors.ErrInsufficientFunds
	}

	transfer := domain.Transfer{
		SenderID:   sender.AccountID,
		ReceiverID: receiver.AccountID,
		Amount:     amount,
		Memo:       memo,
		Timestamp:  time.Now().UTC(),
	}

	saved, err := s.transferRepo.SaveTransfer(ctx, transfer)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			// Lost the race against a concurrent debit; no state change occurred.
			return nil, err
		}
		logger.Error("Failed to save transfer", slog.String("error", err.Error()), slog.String("sender_id", sender.AccountID), slog.String("receiver_id", receiver.AccountID))
		return nil, fmt.Errorf("failed to save transfer: %w", err)
	}

	logger.Info("Transfer completed",
		slog.Int64("transfer_id", saved.TransferID),
		slog.String("sender_id", saved.SenderID),
		slog.String("receiver_id", saved.ReceiverID),
		slog.String("amount", saved.Amount.String()),
	)

	s.publishCompleted(ctx, saved)

	return saved, nil
}

// publishCompleted emits the transfer-completed event. Publishing is
// best-effort: the transfer has already committed, so failures are logged and
// swallowed.
func (s *transferService) publishCompleted(ctx context.Context, t *domain.Transfer) {
	if s.publisher == nil {
		return
	}
	event := domain.TransferCompleted{
		TransferID: t.TransferID,
		SenderID:   t.SenderID,
		ReceiverID: t.ReceiverID,
		Amount:     t.Amount,
		Timestamp:  t.Timestamp,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to publish transfer completed event",
			slog.Int64("transfer_id", t.TransferID), slog.String("error", err.Error()))
	}
}

// History returns every ledger entry where the account is sender or receiver,
// most recent first.
func (s *transferService) History(ctx context.Context, email string) ([]domain.Transfer, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to resolve account for history", slog.String("error", err.Error()))
		}
		return nil, err
	}

	transfers, err := s.transferRepo.ListTransfersByAccountID(ctx, account.AccountID)
	if err != nil {
		logger.Error("Failed to list transfers", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to retrieve transfer history: %w", err)
	}

	if transfers == nil {
		return []domain.Transfer{}, nil
	}

	logger.Debug("Transfer history retrieved", slog.String("account_id", account.AccountID), slog.Int("count", len(transfers)))
	return transfers, nil
}

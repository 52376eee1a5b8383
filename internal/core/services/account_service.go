package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
	"github.com/paymybuddy/backend/internal/dto"
	"github.com/paymybuddy/backend/internal/middleware"
	"github.com/paymybuddy/backend/internal/utils"
)

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// accountService is the account directory: registration, credential checks,
// lookups and profile maintenance. It never touches balances beyond the
// zero-initialisation at registration; value movement goes through the
// transfer engine.
type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: repo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// Register creates a new account with a zero balance.
func (s *accountService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	email := normalizeEmail(req.Email)

	if _, err := s.accountRepo.FindAccountByEmail(ctx, email); err == nil {
		logger.Warn("Registration attempt with existing email")
		return nil, fmt.Errorf("%w: an account already exists for this email", apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		Email:        email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		Balance:      decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		// A concurrent registration can still hit the unique index.
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: an account already exists for this email", apperrors.ErrDuplicate)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account registered", slog.String("account_id", account.AccountID))
	return &account, nil
}

// VerifyCredentials checks an email/password pair for login. It returns
// ErrInvalidCredentials for both unknown emails and wrong passwords so the
// response does not reveal which accounts exist.
func (s *accountService) VerifyCredentials(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// GetAccountByID retrieves an account by its ID.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by email, case-insensitively.
func (s *accountService) GetAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by email", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile updates the mutable profile fields of an account. Email is
// immutable after registration and is not part of the request surface.
func (s *accountService) UpdateProfile(ctx context.Context, accountID string, req dto.UpdateProfileRequest) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for update", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	if req.DisplayName == nil {
		return account, nil
	}

	account.DisplayName = *req.DisplayName
	account.LastUpdatedAt = time.Now().UTC()

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	logger.Info("Account profile updated", slog.String("account_id", accountID))
	return account, nil
}

// ChangePassword replaces an account's password after verifying the old one.
func (s *accountService) ChangePassword(ctx context.Context, accountID string, req dto.ChangePasswordRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account for password change", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return err
	}

	if !utils.CheckPasswordHash(req.OldPassword, account.PasswordHash) {
		logger.Warn("Password change with wrong old password", slog.String("account_id", accountID))
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("Failed to hash new password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	account.PasswordHash = hash
	account.LastUpdatedAt = time.Now().UTC()

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to persist password change", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to persist password change: %w", err)
	}

	logger.Info("Password changed", slog.String("account_id", accountID))
	return nil
}

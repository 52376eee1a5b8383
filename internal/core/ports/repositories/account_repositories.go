package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// AccountRepository defines persistence operations for account holders.
// Note: balances are intentionally absent from the update surface here; the
// only balance write path is ApplyBalanceDeltasInTx, reached through the
// transfer repository's atomic unit.
type AccountRepository interface {
	// SaveAccount persists a new account. Returns apperrors.ErrDuplicate if an
	// account already exists for the (case-insensitive) email.
	SaveAccount(ctx context.Context, account domain.Account) error
	// FindAccountByID returns the account or apperrors.ErrNotFound.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	// FindAccountByEmail looks an account up by email, case-insensitively.
	// Returns apperrors.ErrNotFound if no such account exists.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	// UpdateAccount persists display name and password hash changes.
	// Email and balance are never written by this method.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryWithTx extends AccountRepository with the in-transaction
// primitives the transfer repository composes into its atomic unit.
type AccountRepositoryWithTx interface {
	AccountRepository

	// FindAccountsByIDsForUpdate retrieves the given accounts and locks their
	// rows for the duration of tx. Rows are locked in ascending account-id
	// order so that two transfers moving money in opposite directions between
	// the same pair cannot deadlock. Returns apperrors.ErrNotFound if any
	// requested account is missing.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// ApplyBalanceDeltasInTx applies the given balance deltas within tx. The
	// update is conditional on the resulting balance staying non-negative and
	// returns apperrors.ErrInsufficientFunds otherwise, leaving tx poised for
	// rollback. This is the only statement in the codebase that writes the
	// balance column.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, now time.Time) error
}

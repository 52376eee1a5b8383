package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// TransferSvcFacade exposes the transfer engine: value movement between two
// accounts plus the per-account ledger history.
type TransferSvcFacade interface {
	// Transfer validates and executes a movement of amount from the sender to
	// the receiver, identified by email, and appends one ledger entry.
	Transfer(ctx context.Context, senderEmail, receiverEmail string, amount decimal.Decimal, memo string) (*domain.Transfer, error)
	// History returns the account's ledger entries, most recent first.
	History(ctx context.Context, email string) ([]domain.Transfer, error)
}

package repositories

import (
	"context"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// TransferRepository defines persistence operations for the append-only
// transfer ledger.
type TransferRepository interface {
	// SaveTransfer executes the three-step unit — debit sender, credit
	// receiver, append the ledger entry — atomically: either all three commit
	// or none do. The sender's balance check happens under the same locks as
	// the writes, so no interleaving of concurrent transfers can observe a
	// partial application or produce a negative balance.
	//
	// Returns the appended entry with its assigned ID, or
	// apperrors.ErrInsufficientFunds / apperrors.ErrNotFound with no state
	// change.
	SaveTransfer(ctx context.Context, transfer domain.Transfer) (*domain.Transfer, error)

	// ListTransfersByAccountID returns every ledger entry where the account is
	// sender or receiver, ordered by timestamp descending with entry ID
	// descending as the tiebreak. Read-only snapshot; takes no row locks.
	ListTransfersByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error)
}

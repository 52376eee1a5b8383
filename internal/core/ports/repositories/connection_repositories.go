package repositories

import (
	"context"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// ConnectionRepository defines persistence operations for the acquaintance
// graph. Storage is directional (who initiated), uniqueness is on the
// unordered pair.
type ConnectionRepository interface {
	// SaveConnection inserts the edge. Returns apperrors.ErrDuplicate if the
	// two accounts are already connected in either direction; the existence
	// check and the insert are atomic with respect to each other.
	SaveConnection(ctx context.Context, conn domain.Connection) error

	// ConnectionExists reports whether an edge exists between the two accounts
	// in either direction.
	ConnectionExists(ctx context.Context, accountA, accountB string) (bool, error)

	// ListConnectionsOf returns the accounts connected to the given account,
	// regardless of which side initiated each edge.
	ListConnectionsOf(ctx context.Context, accountID string) ([]domain.Account, error)
}

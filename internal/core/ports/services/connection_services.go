package services

import (
	"context"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// ConnectionSvcFacade maintains the acquaintance graph used by the
// transfer-target suggestion list. Connections never gate transfers.
type ConnectionSvcFacade interface {
	AddConnection(ctx context.Context, ownerEmail, friendEmail string) error
	ConnectionsOf(ctx context.Context, email string) ([]domain.Account, error)
}

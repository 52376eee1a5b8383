package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
)

// RepositoryContainer bundles the postgres-backed repositories.
type RepositoryContainer struct {
	Account    portsrepo.AccountRepositoryWithTx
	Transfer   portsrepo.TransferRepository
	Connection portsrepo.ConnectionRepository
}

// NewRepositoryContainer creates all pgx repositories sharing one pool.
func NewRepositoryContainer(pool *pgxpool.Pool) *RepositoryContainer {
	accountRepo := newPgxAccountRepository(pool)
	return &RepositoryContainer{
		Account:    accountRepo,
		Transfer:   newPgxTransferRepository(pool, accountRepo),
		Connection: newPgxConnectionRepository(pool),
	}
}

package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paymybuddy/backend/internal/apperrors"
	"github.com/paymybuddy/backend/internal/core/domain"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
	"github.com/paymybuddy/backend/internal/models"
	"github.com/paymybuddy/backend/internal/utils/mapping"
)

type PgxConnectionRepository struct {
	BaseRepository
}

// newPgxConnectionRepository creates a new repository for the connection graph.
func newPgxConnectionRepository(pool *pgxpool.Pool) portsrepo.ConnectionRepository {
	return &PgxConnectionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxConnectionRepository implements portsrepo.ConnectionRepository
var _ portsrepo.ConnectionRepository = (*PgxConnectionRepository)(nil)

// SaveConnection inserts the edge. The table carries a unique index on
// (LEAST(initiator_id, friend_id), GREATEST(initiator_id, friend_id)), so the
// unordered pair is unique no matter which side initiated, and the insert is
// the atomic duplicate check.
func (r *PgxConnectionRepository) SaveConnection(ctx context.Context, conn domain.Connection) error {
	query := `
		INSERT INTO connections (initiator_id, friend_id, created_at)
		VALUES ($1, $2, $3);
	`
	_, err := r.Pool.Exec(ctx, query, conn.InitiatorID, conn.FriendID, conn.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on the canonical pair
				return apperrors.ErrDuplicate
			}
		}
		return fmt.Errorf("failed to insert connection: %w", err)
	}
	return nil
}

func (r *PgxConnectionRepository) ConnectionExists(ctx context.Context, accountA, accountB string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE (initiator_id = $1 AND friend_id = $2)
			   OR (initiator_id = $2 AND friend_id = $1)
		);
	`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, accountA, accountB).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check connection existence: %w", err)
	}
	return exists, nil
}

// ListConnectionsOf returns the accounts connected to the given account,
// regardless of edge direction.
func (r *PgxConnectionRepository) ListConnectionsOf(ctx context.Context, accountID string) ([]domain.Account, error) {
	query := `
		SELECT a.account_id, a.email, a.display_name, a.password_hash, a.balance, a.created_at, a.last_updated_at
		FROM accounts a
		JOIN connections c
		  ON (c.initiator_id = $1 AND c.friend_id = a.account_id)
		  OR (c.friend_id = $1 AND c.initiator_id = a.account_id)
		ORDER BY a.email;
	`

	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query connections for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var m models.Account
		err := rows.Scan(
			&m.AccountID,
			&m.Email,
			&m.DisplayName,
			&m.PasswordHash,
			&m.Balance,
			&m.CreatedAt,
			&m.LastUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connected account row: %w", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connection rows: %w", err)
	}

	return mapping.ToDomainAccountSlice(accounts), nil
}

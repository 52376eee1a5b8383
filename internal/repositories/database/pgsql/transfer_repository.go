package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/core/domain"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
	"github.com/paymybuddy/backend/internal/models"
	"github.com/paymybuddy/backend/internal/utils/mapping"
)

type PgxTransferRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepositoryWithTx
}

// newPgxTransferRepository creates a new repository for the transfer ledger.
func newPgxTransferRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryWithTx) portsrepo.TransferRepository {
	return &PgxTransferRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

// Ensure PgxTransferRepository implements portsrepo.TransferRepository
var _ portsrepo.TransferRepository = (*PgxTransferRepository)(nil)

// SaveTransfer debits the sender, credits the receiver and appends the ledger
// entry within a single database transaction. Both account rows are locked
// (in ascending id order) before any balance is read or written, so the
// sufficiency check and the two updates are serializable with respect to
// every other transfer touching either account.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, transfer domain.Transfer) (*domain.Transfer, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// Ignored if the transaction commits.
	defer r.Rollback(ctx, tx)

	accountIDs := []string{transfer.SenderID, transfer.ReceiverID}
	if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
		return nil, fmt.Errorf("failed to lock accounts for transfer: %w", err)
	}

	deltas := map[string]decimal.Decimal{
		transfer.SenderID:   transfer.Amount.Neg(),
		transfer.ReceiverID: transfer.Amount,
	}
	if err := r.accountRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, transfer.Timestamp); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO transfers (sender_id, receiver_id, amount, memo, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING transfer_id;
	`
	var transferID int64
	err = tx.QueryRow(ctx, query,
		transfer.SenderID,
		transfer.ReceiverID,
		transfer.Amount,
		transfer.Memo,
		transfer.Timestamp,
	).Scan(&transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	transfer.TransferID = transferID
	return &transfer, nil
}

// ListTransfersByAccountID returns the ledger entries involving the account,
// ordered most recent first with entry id as a deterministic tiebreak.
func (r *PgxTransferRepository) ListTransfersByAccountID(ctx context.Context, accountID string) ([]domain.Transfer, error) {
	query := `
		SELECT transfer_id, sender_id, receiver_id, amount, memo, timestamp
		FROM transfers
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY timestamp DESC, transfer_id DESC;
	`

	rows, err := r.Pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		var m models.Transfer
		err := rows.Scan(
			&m.TransferID,
			&m.SenderID,
			&m.ReceiverID,
			&m.Amount,
			&m.Memo,
			&m.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		transfers = append(transfers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}

	return mapping.ToDomainTransferSlice(transfers), nil
}

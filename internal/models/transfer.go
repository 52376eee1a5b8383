package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer represents an immutable row in the transfers ledger table.
type Transfer struct {
	TransferID int64           `db:"transfer_id"` // BIGSERIAL
	SenderID   string          `db:"sender_id"`
	ReceiverID string          `db:"receiver_id"`
	Amount     decimal.Decimal `db:"amount"` // NUMERIC(12,2), CHECK (amount > 0)
	Memo       string          `db:"memo"`
	Timestamp  time.Time       `db:"timestamp"`
}

// Connection represents a row in the connections table. The unique index is
// on the canonical (least, greatest) pair, so at most one row exists per
// unordered pair of accounts.
type Connection struct {
	InitiatorID string    `db:"initiator_id"`
	FriendID    string    `db:"friend_id"`
	CreatedAt   time.Time `db:"created_at"`
}

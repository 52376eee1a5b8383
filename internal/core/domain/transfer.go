package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is a single immutable ledger entry recording a movement of value
// from one account to another. Entries are append-only: nothing in the
// codebase updates or deletes a transfer once it is written.
type Transfer struct {
	TransferID int64           `json:"transferID"` // Monotonic, assigned at append time
	SenderID   string          `json:"senderID"`   // FK -> accounts.account_id
	ReceiverID string          `json:"receiverID"` // FK -> accounts.account_id, distinct from SenderID
	Amount     decimal.Decimal `json:"amount"`     // Scale 2, strictly positive
	Memo       string          `json:"memo"`       // Optional, bounded length
	Timestamp  time.Time       `json:"timestamp"`  // Server-assigned at append time
}

// MaxMemoLength bounds the free-text memo attached to a transfer.
const MaxMemoLength = 255

// TransferCompleted is the event emitted after a transfer has committed.
// The ledger entry ID lets downstream consumers deduplicate.
type TransferCompleted struct {
	TransferID int64           `json:"transferID"`
	SenderID   string          `json:"senderID"`
	ReceiverID string          `json:"receiverID"`
	Amount     decimal.Decimal `json:"amount"`
	Timestamp  time.Time       `json:"timestamp"`
}

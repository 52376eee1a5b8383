package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// CreateTransferRequest defines the payload for executing a transfer.
// Amount uses the custom dgt0 rule (decimal strictly greater than zero)
// registered alongside the gin binding validator.
type CreateTransferRequest struct {
	ReceiverEmail string          `json:"receiverEmail" binding:"required,email"`
	Amount        decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Memo          string          `json:"memo" binding:"max=255"`
}

// TransferResponse defines the data returned for a single ledger entry.
type TransferResponse struct {
	TransferID int64           `json:"transferID"`
	SenderID   string          `json:"senderID"`
	ReceiverID string          `json:"receiverID"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ListTransfersResponse wraps the transfer history of an account.
type ListTransfersResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// ToTransferResponse converts a domain.Transfer to TransferResponse DTO.
func ToTransferResponse(t *domain.Transfer) TransferResponse {
	return TransferResponse{
		TransferID: t.TransferID,
		SenderID:   t.SenderID,
		ReceiverID: t.ReceiverID,
		Amount:     t.Amount,
		Memo:       t.Memo,
		Timestamp:  t.Timestamp,
	}
}

// ToListTransfersResponse converts a slice of domain.Transfer to the list DTO.
func ToListTransfersResponse(ts []domain.Transfer) ListTransfersResponse {
	responses := make([]TransferResponse, len(ts))
	for i := range ts {
		responses[i] = ToTransferResponse(&ts[i])
	}
	return ListTransfersResponse{Transfers: responses}
}

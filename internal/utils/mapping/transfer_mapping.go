package mapping

import (
	"github.com/paymybuddy/backend/internal/core/domain"
	"github.com/paymybuddy/backend/internal/models"
)

// ToDomainTransfer converts a model Transfer to a domain Transfer
func ToDomainTransfer(m models.Transfer) domain.Transfer {
	return domain.Transfer{
		TransferID: m.TransferID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Amount:     m.Amount,
		Memo:       m.Memo,
		Timestamp:  m.Timestamp,
	}
}

// ToDomainTransferSlice converts a slice of model Transfers to domain Transfers
func ToDomainTransferSlice(ms []models.Transfer) []domain.Transfer {
	ds := make([]domain.Transfer, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransfer(m)
	}
	return ds
}

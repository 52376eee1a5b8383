package dto

import (
	"github.com/paymybuddy/backend/internal/core/domain"
)

// AddConnectionRequest defines the payload for adding a connection.
type AddConnectionRequest struct {
	FriendEmail string `json:"friendEmail" binding:"required,email"`
}

// ConnectionResponse is one entry of the transfer-target suggestion list.
type ConnectionResponse struct {
	AccountID   string `json:"accountID"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// ListConnectionsResponse wraps the connections of an account.
type ListConnectionsResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

// ToListConnectionsResponse converts connected accounts to the list DTO.
func ToListConnectionsResponse(accounts []domain.Account) ListConnectionsResponse {
	responses := make([]ConnectionResponse, len(accounts))
	for i, a := range accounts {
		responses[i] = ConnectionResponse{
			AccountID:   a.AccountID,
			Email:       a.Email,
			DisplayName: a.DisplayName,
		}
	}
	return ListConnectionsResponse{Connections: responses}
}

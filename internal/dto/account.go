package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/paymybuddy/backend/internal/core/domain"
)

// RegisterRequest defines the payload for creating a new account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"displayName" binding:"max=100"`
}

// UpdateProfileRequest defines the data allowed for updating an account profile.
// Using a pointer to differentiate between omitted fields and zero-value fields.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" binding:"omitempty,max=100"`
}

// ChangePasswordRequest defines the payload for changing an account password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID   string          `json:"accountID"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:   a.AccountID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Balance:     a.Balance,
		CreatedAt:   a.CreatedAt,
	}
}

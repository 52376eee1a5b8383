package domain

import (
	"github.com/shopspring/decimal"
)

// Account represents a registered account holder within the core domain.
// This is the primary representation used by services.
//
// Email is the lookup identifier; it is stored lowercased and is immutable
// after registration. Balance is a scale-2 decimal and is never negative;
// the only write path for it is the transfer repository.
type Account struct {
	AccountID    string          `json:"accountID"`   // Primary Key (UUID)
	Email        string          `json:"email"`       // Unique, lowercased
	DisplayName  string          `json:"displayName"` // Optional free text
	PasswordHash string          `json:"-"`           // bcrypt hash, never serialized
	Balance      decimal.Decimal `json:"balance"`     // Scale 2, >= 0
	AuditFields
}

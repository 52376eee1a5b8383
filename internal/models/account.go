package models

import (
	"github.com/shopspring/decimal"
)

// Account represents an account holder row in the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	Email        string          `db:"email"` // Unique, stored lowercased
	DisplayName  string          `db:"display_name"`
	PasswordHash string          `db:"password_hash"`
	Balance      decimal.Decimal `db:"balance"` // NUMERIC(12,2), CHECK (balance >= 0)
	AuditFields
}

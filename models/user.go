package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents an account holder with a spendable wallet balance
type User struct {
	ID             int64           `db:"id"`
	Email          string          `db:"email"`
	Balance        decimal.Decimal `db:"balance"`
	WeeklyCashback decimal.Decimal `db:"weekly_cashback"` // Cached reward of the current week, display only
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawRequest is a payout request that an operator settles manually
type WithdrawRequest struct {
	ID        uuid.UUID       `db:"id"`
	UserID    int64           `db:"user_id"`
	Amount    decimal.Decimal `db:"amount"`
	Address   string          `db:"address"`
	CreatedAt time.Time       `db:"created_at"`
}

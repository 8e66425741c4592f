package models

import "github.com/shopspring/decimal"

// AccountInfo is the wallet overview shown to a user
type AccountInfo struct {
	UserID         int64
	Balance        decimal.Decimal
	WeeklyCashback decimal.Decimal
	PendingLays    []*Bet
	History        []*Bet
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle status of a lay
type BetStatus string

const (
	BetStatusPending  BetStatus = "pending"
	BetStatusApproved BetStatus = "approved"
	BetStatusDeclined BetStatus = "declined"
)

// IsValid reports whether the status belongs to the lay lifecycle
func (s BetStatus) IsValid() bool {
	switch s {
	case BetStatusPending, BetStatusApproved, BetStatusDeclined:
		return true
	}
	return false
}

// IsResolved reports whether an admin has decided the lay
func (s BetStatus) IsResolved() bool {
	return s == BetStatusApproved || s == BetStatusDeclined
}

// Bet represents a lay: one staked prediction awaiting an admin decision
type Bet struct {
	ID          uuid.UUID       `db:"id"`
	UserID      int64           `db:"user_id"`
	TotalOdds   decimal.Decimal `db:"total_odds"`
	StakeAmount decimal.Decimal `db:"stake_amount"`
	WinPayout   decimal.Decimal `db:"win_payout"`
	LossPayout  decimal.Decimal `db:"loss_payout"` // Returned to the wallet when the lay is declined
	Match       string          `db:"match"`
	Tip         string          `db:"tip"`
	FileName    string          `db:"file_name"` // Reference to the externally stored slip image
	Status      BetStatus       `db:"status"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// WeeklyDelta is the effect a status has on the owner's weekly balance.
// Approved nets the payout against the stake, declined loses the stake.
func (b *Bet) WeeklyDelta(status BetStatus) decimal.Decimal {
	switch status {
	case BetStatusApproved:
		return b.WinPayout.Sub(b.StakeAmount)
	case BetStatusDeclined:
		return b.StakeAmount.Neg()
	default:
		return decimal.Zero
	}
}

// WalletCredit is the amount a status pays into the owner's wallet.
// The stake is not subtracted here because it was debited when the lay was placed.
func (b *Bet) WalletCredit(status BetStatus) decimal.Decimal {
	switch status {
	case BetStatusApproved:
		return b.WinPayout
	case BetStatusDeclined:
		return b.LossPayout
	default:
		return decimal.Zero
	}
}

// BetTransition describes the ledger effects of moving a lay between two statuses
type BetTransition struct {
	From         BetStatus
	To           BetStatus
	WalletCredit decimal.Decimal
	WeeklyDelta  decimal.Decimal
}

// Transition computes the wallet and weekly deltas for moving from one status to another.
// The previous status's effect is reverted before the new one is applied.
func (b *Bet) Transition(from, to BetStatus) BetTransition {
	return BetTransition{
		From:         from,
		To:           to,
		WalletCredit: b.WalletCredit(to).Sub(b.WalletCredit(from)),
		WeeklyDelta:  b.WeeklyDelta(from).Neg().Add(b.WeeklyDelta(to)),
	}
}

// IsNoop reports whether the transition leaves the ledger untouched
func (t BetTransition) IsNoop() bool {
	return t.From == t.To
}

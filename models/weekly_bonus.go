package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// rewardDivisor turns net weekly losses into a 20% rebate
var rewardDivisor = decimal.NewFromInt(5)

// WeeklyBonus tracks a user's net result and loss rebate for one Monday-Sunday week
type WeeklyBonus struct {
	ID            int64           `db:"id"`
	UserID        int64           `db:"user_id"`
	WeekStart     time.Time       `db:"week_start"`
	WeekEnd       time.Time       `db:"week_end"`
	WeeklyBalance decimal.Decimal `db:"weekly_balance"`
	WeeklyReward  decimal.Decimal `db:"weekly_reward"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// ApplyDelta adds delta to the weekly balance and recomputes the reward
func (w *WeeklyBonus) ApplyDelta(delta decimal.Decimal) {
	w.WeeklyBalance = w.WeeklyBalance.Add(delta)
	w.WeeklyReward = CalculateReward(w.WeeklyBalance)
}

// Reset zeroes the counters for a new period
func (w *WeeklyBonus) Reset() {
	w.WeeklyBalance = decimal.Zero
	w.WeeklyReward = decimal.Zero
}

// CalculateReward returns max(0, -balance) / 5, truncated to MoneyScale so the stored
// and paid reward are the same value. Net wins are never rewarded.
func CalculateReward(weeklyBalance decimal.Decimal) decimal.Decimal {
	if !weeklyBalance.IsNegative() {
		return decimal.Zero
	}
	return weeklyBalance.Neg().Div(rewardDivisor).Truncate(MoneyScale)
}

// WeekRange returns the Monday and Sunday of the week containing ref's UTC calendar date
func WeekRange(ref time.Time) (start, end time.Time) {
	ref = ref.UTC()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday starts at Sunday=0
	offset := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

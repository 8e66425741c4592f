package service

import (
	"context"
	"fmt"
	"time"

	"layledger/models"
	"github.com/shopspring/decimal"
)

// ApplyWeeklyDelta adds delta to the user's record for the week containing referenceDate
// and recomputes its reward. The caller must already hold the user's wallet lock.
// When that week is the current one the user's cached weekly_cashback follows the reward.
func ApplyWeeklyDelta(ctx context.Context, uow UnitOfWork, userID int64, referenceDate time.Time, delta decimal.Decimal, now time.Time) (*models.WeeklyBonus, error) {
	weekStart, weekEnd := models.WeekRange(referenceDate)

	bonus, err := uow.WeeklyBonusRepository().GetOrCreateForUpdate(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to lock weekly bonus: %w", err)
	}

	bonus.ApplyDelta(delta)
	if err := uow.WeeklyBonusRepository().Update(ctx, bonus); err != nil {
		return nil, fmt.Errorf("failed to update weekly bonus: %w", err)
	}

	currentStart, _ := models.WeekRange(now)
	if currentStart.Equal(weekStart) {
		if err := uow.UserRepository().UpdateWeeklyCashback(ctx, userID, bonus.WeeklyReward); err != nil {
			return nil, fmt.Errorf("failed to refresh weekly cashback: %w", err)
		}
	}

	return bonus, nil
}

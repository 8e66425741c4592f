package service

import (
	"context"
	"errors"
	"testing"

	"layledger/events"
	"layledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdjustBalance_Credit(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)

	m.users.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.User{ID: 7, Balance: money("10.5")}, nil)
	m.users.On("UpdateBalance", ctx, int64(7), decimalEq("15.75")).Return(nil)
	m.history.On("Record", ctx, mock.Anything).Return(nil)
	m.events.On("Publish", mock.MatchedBy(func(e events.BalanceChangeEvent) bool {
		return e.OldBalance.Equal(money("10.5")) && e.NewBalance.Equal(money("15.75"))
	})).Return()

	user, err := AdjustBalance(ctx, m.uow, BalanceChange{
		UserID:          7,
		Delta:           money("5.25"),
		TransactionType: models.TransactionTypeBetSettlement,
	})

	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(money("15.75")))
	m.users.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.events.AssertExpectations(t)
}

func TestAdjustBalance_DebitToZero(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)

	m.users.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.User{ID: 7, Balance: money("10")}, nil)
	m.users.On("UpdateBalance", ctx, int64(7), decimalEq("0")).Return(nil)
	m.history.On("Record", ctx, mock.Anything).Return(nil)
	m.events.On("Publish", mock.Anything).Return()

	user, err := AdjustBalance(ctx, m.uow, BalanceChange{UserID: 7, Delta: money("-10")})

	require.NoError(t, err)
	assert.True(t, user.Balance.IsZero())
}

func TestAdjustBalance_Insufficient(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)

	m.users.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.User{ID: 7, Balance: money("10")}, nil)

	user, err := AdjustBalance(ctx, m.uow, BalanceChange{UserID: 7, Delta: money("-10.000001")})

	assert.Nil(t, user)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, ReasonInsufficientBalance, ReasonOf(err))
	m.users.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
	m.history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestAdjustBalance_RejectsUnstorableAmounts(t *testing.T) {
	tests := []struct {
		name    string
		balance string
		delta   string
	}{
		{"delta below storage scale", "100", "-10.0000004"},
		{"result beyond column range", "999999999999", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m := newUowMocks(ctx)
			m.users.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.User{ID: 7, Balance: money(tt.balance)}, nil)

			user, err := AdjustBalance(ctx, m.uow, BalanceChange{UserID: 7, Delta: money(tt.delta)})

			assert.Nil(t, user)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, ReasonInvalidAmount, ReasonOf(err))
			m.users.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAdjustBalance_ZeroDeltaOnlyLocks(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)

	m.users.On("GetByIDForUpdate", ctx, int64(7)).Return(&models.User{ID: 7, Balance: money("10")}, nil)

	user, err := AdjustBalance(ctx, m.uow, BalanceChange{UserID: 7, Delta: money("0")})

	require.NoError(t, err)
	assert.True(t, user.Balance.Equal(money("10")))
	m.users.AssertExpectations(t)
	m.users.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
	m.history.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestAdjustBalance_UserNotFound(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)

	m.users.On("GetByIDForUpdate", ctx, int64(42)).Return(nil, nil)

	_, err := AdjustBalance(ctx, m.uow, BalanceChange{UserID: 42, Delta: money("1")})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ReasonUserNotFound, ReasonOf(err))
}

func TestApplyWeeklyDelta_CurrentWeekRefreshesCashback(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)

	weekStart, weekEnd := models.WeekRange(wednesday)
	bonus := &models.WeeklyBonus{ID: 1, UserID: 7, WeekStart: weekStart, WeekEnd: weekEnd, WeeklyBalance: money("-5")}

	m.weekly.On("GetOrCreateForUpdate", ctx, int64(7), weekStart, weekEnd).Return(bonus, nil)
	m.weekly.On("Update", ctx, bonus).Return(nil)
	m.users.On("UpdateWeeklyCashback", ctx, int64(7), decimalEq("3")).Return(nil)

	updated, err := ApplyWeeklyDelta(ctx, m.uow, 7, wednesday, money("-10"), wednesday)

	require.NoError(t, err)
	assert.True(t, updated.WeeklyBalance.Equal(money("-15")))
	assert.True(t, updated.WeeklyReward.Equal(money("3")))
	m.weekly.AssertExpectations(t)
	m.users.AssertExpectations(t)
}

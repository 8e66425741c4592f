package service

import (
	"context"
	"errors"
	"testing"

	"layledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_OpenAccount(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)
	service := NewAccountService(m.factory)

	created := &models.User{ID: 7, Email: "punter@example.com", Balance: money("100")}

	m.uow.On("Commit").Return(nil)
	m.users.On("Create", ctx, "punter@example.com", decimalEq("100")).Return(created, nil)
	m.history.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.TransactionType == models.TransactionTypeInitial &&
			h.BalanceBefore.IsZero() && h.BalanceAfter.Equal(money("100"))
	})).Return(nil)
	m.events.On("Publish", mock.AnythingOfType("events.BalanceChangeEvent")).Return()

	user, err := service.OpenAccount(ctx, "  Punter@Example.com ", money("100"))

	require.NoError(t, err)
	assert.Equal(t, created, user)
	m.assertExpectations(t)
}

func TestAccountService_OpenAccount_RejectsBadInput(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewAccountService(mockFactory)

	_, err := service.OpenAccount(context.Background(), " ", money("1"))
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = service.OpenAccount(context.Background(), "a@b.c", money("-1"))
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = service.OpenAccount(context.Background(), "a@b.c", money("0.0000001"))
	assert.Equal(t, ReasonInvalidAmount, ReasonOf(err))

	mockFactory.AssertNotCalled(t, "Create")
}

func TestAccountService_GetAccountInfo(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)
	service := NewAccountService(m.factory)

	pendingBet := newPendingBet(7, wednesday)
	approvedBet := newPendingBet(7, wednesday)
	approvedBet.Status = models.BetStatusApproved
	declinedBet := newPendingBet(7, wednesday)
	declinedBet.Status = models.BetStatusDeclined

	pendingStatus := models.BetStatusPending
	m.users.On("GetByID", ctx, int64(7)).Return(&models.User{ID: 7, Balance: money("94"), WeeklyCashback: money("2")}, nil)
	m.bets.On("GetByUser", ctx, int64(7), &pendingStatus, DefaultListLimit).Return([]*models.Bet{pendingBet}, nil)
	m.bets.On("GetByUser", ctx, int64(7), (*models.BetStatus)(nil), DefaultListLimit).
		Return([]*models.Bet{pendingBet, approvedBet, declinedBet}, nil)

	info, err := service.GetAccountInfo(ctx, 7)

	require.NoError(t, err)
	assert.True(t, info.Balance.Equal(money("94")))
	assert.True(t, info.WeeklyCashback.Equal(money("2")))
	assert.Equal(t, []*models.Bet{pendingBet}, info.PendingLays)
	assert.Equal(t, []*models.Bet{approvedBet, declinedBet}, info.History)
	m.assertExpectations(t)
}

func TestAccountService_GetAccountInfo_UserNotFound(t *testing.T) {
	ctx := context.Background()
	m := newUowMocks(ctx)
	service := NewAccountService(m.factory)

	m.users.On("GetByID", ctx, int64(7)).Return(nil, nil)

	_, err := service.GetAccountInfo(ctx, 7)

	assert.True(t, errors.Is(err, ErrNotFound))
}

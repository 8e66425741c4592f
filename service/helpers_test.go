package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// wednesday is a fixed clock inside the week of 2024-01-08
var wednesday = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// decimalEq matches a decimal argument by value rather than representation
func decimalEq(value string) interface{} {
	want := money(value)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

// uowMocks bundles a mocked unit of work with every repository wired in
type uowMocks struct {
	factory     *MockUnitOfWorkFactory
	uow         *MockUnitOfWork
	users       *MockUserRepository
	history     *MockBalanceHistoryRepository
	bets        *MockBetRepository
	weekly      *MockWeeklyBonusRepository
	deposits    *MockDepositRepository
	withdrawals *MockWithdrawRequestRepository
	events      *MockEventPublisher
}

func newUowMocks(ctx context.Context) *uowMocks {
	m := &uowMocks{
		factory:     new(MockUnitOfWorkFactory),
		uow:         new(MockUnitOfWork),
		users:       new(MockUserRepository),
		history:     new(MockBalanceHistoryRepository),
		bets:        new(MockBetRepository),
		weekly:      new(MockWeeklyBonusRepository),
		deposits:    new(MockDepositRepository),
		withdrawals: new(MockWithdrawRequestRepository),
		events:      new(MockEventPublisher),
	}

	m.uow.SetRepositories(m.users, m.history, m.bets)
	m.uow.SetWeeklyBonusRepository(m.weekly)
	m.uow.SetDepositRepository(m.deposits)
	m.uow.SetWithdrawRequestRepository(m.withdrawals)
	m.uow.SetEventBus(m.events)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)

	return m
}

type assertExpectationser interface {
	AssertExpectations(t mock.TestingT) bool
}

func (m *uowMocks) assertExpectations(t mock.TestingT) {
	for _, mk := range []assertExpectationser{m.factory, m.uow, m.users, m.history, m.bets, m.weekly, m.deposits, m.withdrawals, m.events} {
		mk.AssertExpectations(t)
	}
}

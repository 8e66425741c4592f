package api

import (
	"context"

	"layledger/models"
	"layledger/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockBetService struct {
	mock.Mock
}

func (m *mockBetService) CreateBet(ctx context.Context, params service.CreateBetParams) (*models.Bet, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockBetService) TransitionBet(ctx context.Context, betID uuid.UUID, newStatus models.BetStatus) (*models.Bet, error) {
	args := m.Called(ctx, betID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockBetService) GetBet(ctx context.Context, betID uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockBetService) ListBets(ctx context.Context, userID int64, status *models.BetStatus, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, userID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

type mockDepositService struct {
	mock.Mock
}

func (m *mockDepositService) NextAddress(ctx context.Context) (*models.DepositAddress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositAddress), args.Error(1)
}

func (m *mockDepositService) SeedAddresses(ctx context.Context, addresses []string) error {
	args := m.Called(ctx, addresses)
	return args.Error(0)
}

type mockWithdrawService struct {
	mock.Mock
}

func (m *mockWithdrawService) RequestWithdraw(ctx context.Context, userID int64, amount decimal.Decimal, address string) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, userID, amount, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WithdrawRequest), args.Error(1)
}

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) OpenAccount(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error) {
	args := m.Called(ctx, email, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockAccountService) GetAccountInfo(ctx context.Context, userID int64) (*models.AccountInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AccountInfo), args.Error(1)
}

// memoryIdempotencyStore is an in-memory IdempotencyStore
type memoryIdempotencyStore struct {
	keys map[string]bool
	err  error
}

func (s *memoryIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryIdempotencyStore) Release(ctx context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

package service

import (
	"context"
	"time"

	"layledger/events"
	"layledger/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error) {
	args := m.Called(ctx, email, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	args := m.Called(ctx, id, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateWeeklyCashback(ctx context.Context, id int64, cashback decimal.Decimal) error {
	args := m.Called(ctx, id, cashback)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) UpdateStatus(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByUser(ctx context.Context, userID int64, status *models.BetStatus, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, userID, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockWeeklyBonusRepository is a mock implementation of WeeklyBonusRepository
type MockWeeklyBonusRepository struct {
	mock.Mock
}

func (m *MockWeeklyBonusRepository) GetOrCreateForUpdate(ctx context.Context, userID int64, weekStart, weekEnd time.Time) (*models.WeeklyBonus, error) {
	args := m.Called(ctx, userID, weekStart, weekEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyBonus), args.Error(1)
}

func (m *MockWeeklyBonusRepository) GetByID(ctx context.Context, id int64) (*models.WeeklyBonus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyBonus), args.Error(1)
}

func (m *MockWeeklyBonusRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.WeeklyBonus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyBonus), args.Error(1)
}

func (m *MockWeeklyBonusRepository) GetByUserAndWeek(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyBonus, error) {
	args := m.Called(ctx, userID, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklyBonus), args.Error(1)
}

func (m *MockWeeklyBonusRepository) Update(ctx context.Context, bonus *models.WeeklyBonus) error {
	args := m.Called(ctx, bonus)
	return args.Error(0)
}

func (m *MockWeeklyBonusRepository) ListIDsUpTo(ctx context.Context, weekStart time.Time) ([]int64, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockDepositRepository is a mock implementation of DepositRepository
type MockDepositRepository struct {
	mock.Mock
}

func (m *MockDepositRepository) GetRotationForUpdate(ctx context.Context) (*models.DepositRotation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositRotation), args.Error(1)
}

func (m *MockDepositRepository) MaxIndex(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDepositRepository) GetAddressByIndex(ctx context.Context, index int) (*models.DepositAddress, error) {
	args := m.Called(ctx, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DepositAddress), args.Error(1)
}

func (m *MockDepositRepository) UpdateRotation(ctx context.Context, currentIndex int) error {
	args := m.Called(ctx, currentIndex)
	return args.Error(0)
}

func (m *MockDepositRepository) RecordIssue(ctx context.Context, address *models.DepositAddress) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockDepositRepository) ReplacePool(ctx context.Context, addresses []string) error {
	args := m.Called(ctx, addresses)
	return args.Error(0)
}

// MockWithdrawRequestRepository is a mock implementation of WithdrawRequestRepository
type MockWithdrawRequestRepository struct {
	mock.Mock
}

func (m *MockWithdrawRequestRepository) Create(ctx context.Context, request *models.WithdrawRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockWithdrawRequestRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawRequest, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WithdrawRequest), args.Error(1)
}

// MockRolloverRunRepository is a mock implementation of RolloverRunRepository
type MockRolloverRunRepository struct {
	mock.Mock
}

func (m *MockRolloverRunRepository) GetByWeek(ctx context.Context, weekStart time.Time) (*models.RolloverRun, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RolloverRun), args.Error(1)
}

func (m *MockRolloverRunRepository) Upsert(ctx context.Context, run *models.RolloverRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockEventEmitter is a mock implementation of EventEmitter for testing
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) Emit(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and Rollback
// are recorded calls; repository getters return whatever was set on the mock.
type MockUnitOfWork struct {
	mock.Mock
	userRepo            UserRepository
	balanceHistoryRepo  BalanceHistoryRepository
	betRepo             BetRepository
	weeklyBonusRepo     WeeklyBonusRepository
	depositRepo         DepositRepository
	withdrawRequestRepo WithdrawRequestRepository
	eventBus            EventPublisher
}

// SetRepositories wires the repositories most services need
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, balanceHistoryRepo BalanceHistoryRepository, betRepo BetRepository) {
	m.userRepo = userRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	m.betRepo = betRepo
}

func (m *MockUnitOfWork) SetWeeklyBonusRepository(repo WeeklyBonusRepository) {
	m.weeklyBonusRepo = repo
}

func (m *MockUnitOfWork) SetDepositRepository(repo DepositRepository) {
	m.depositRepo = repo
}

func (m *MockUnitOfWork) SetWithdrawRequestRepository(repo WithdrawRequestRepository) {
	m.withdrawRequestRepo = repo
}

func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) WeeklyBonusRepository() WeeklyBonusRepository {
	return m.weeklyBonusRepo
}

func (m *MockUnitOfWork) DepositRepository() DepositRepository {
	return m.depositRepo
}

func (m *MockUnitOfWork) WithdrawRequestRepository() WithdrawRequestRepository {
	return m.withdrawRequestRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

package service

import (
	"context"
	"time"

	"layledger/events"
	"layledger/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for wallet data access
type UserRepository interface {
	// GetByID retrieves a user by ID, returning nil if not found
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user and locks the wallet row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error)

	// UpdateBalance stores a new wallet balance
	UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error

	// UpdateWeeklyCashback stores the cached reward of the current week
	UpdateWeeklyCashback(ctx context.Context, id int64, cashback decimal.Decimal) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// BetRepository defines the interface for lay data access
type BetRepository interface {
	// Create inserts a new lay
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a lay by its ID, returning nil if not found
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)

	// GetByIDForUpdate retrieves a lay and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Bet, error)

	// UpdateStatus persists a new status and refreshes updated_at
	UpdateStatus(ctx context.Context, bet *models.Bet) error

	// GetByUser returns a user's lays, newest first, optionally filtered by status
	GetByUser(ctx context.Context, userID int64, status *models.BetStatus, limit int) ([]*models.Bet, error)
}

// WeeklyBonusRepository defines the interface for weekly accrual records
type WeeklyBonusRepository interface {
	// GetOrCreateForUpdate ensures the (user, week) record exists and locks it
	GetOrCreateForUpdate(ctx context.Context, userID int64, weekStart, weekEnd time.Time) (*models.WeeklyBonus, error)

	// GetByID reads a record by ID without locking, returning nil if not found
	GetByID(ctx context.Context, id int64) (*models.WeeklyBonus, error)

	// GetByIDForUpdate locks a record by ID, returning nil if not found
	GetByIDForUpdate(ctx context.Context, id int64) (*models.WeeklyBonus, error)

	// GetByUserAndWeek reads a record without locking, returning nil if not found
	GetByUserAndWeek(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyBonus, error)

	// Update persists the balance and reward of a record
	Update(ctx context.Context, bonus *models.WeeklyBonus) error

	// ListIDsUpTo returns the IDs of every record whose week starts on or before weekStart, ordered by ID
	ListIDsUpTo(ctx context.Context, weekStart time.Time) ([]int64, error)
}

// DepositRepository defines the interface for the deposit address pool and its rotation cursor
type DepositRepository interface {
	// GetRotationForUpdate locks the rotation singleton, returning nil if it is missing
	GetRotationForUpdate(ctx context.Context) (*models.DepositRotation, error)

	// MaxIndex returns the highest pool index, or 0 for an empty pool
	MaxIndex(ctx context.Context) (int, error)

	// GetAddressByIndex returns the address at a pool index, returning nil if not found
	GetAddressByIndex(ctx context.Context, index int) (*models.DepositAddress, error)

	// UpdateRotation stores the next index to serve
	UpdateRotation(ctx context.Context, currentIndex int) error

	// RecordIssue appends an issued address to the issue log
	RecordIssue(ctx context.Context, address *models.DepositAddress) error

	// ReplacePool swaps the pool for the given addresses indexed from 1 and resets the cursor
	ReplacePool(ctx context.Context, addresses []string) error
}

// WithdrawRequestRepository defines the interface for payout requests
type WithdrawRequestRepository interface {
	// Create inserts a new withdraw request
	Create(ctx context.Context, request *models.WithdrawRequest) error

	// GetByUser returns a user's requests, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawRequest, error)
}

// RolloverRunRepository defines the interface for rollover run bookkeeping
type RolloverRunRepository interface {
	// GetByWeek returns the run recorded for a week, returning nil if none
	GetByWeek(ctx context.Context, weekStart time.Time) (*models.RolloverRun, error)

	// Upsert records a run, accumulating into the existing row for the same week
	Upsert(ctx context.Context, run *models.RolloverRun) error
}

// CreateBetParams carries the caller-supplied fields of a new lay
type CreateBetParams struct {
	UserID      int64
	TotalOdds   decimal.Decimal
	StakeAmount decimal.Decimal
	WinPayout   decimal.Decimal
	LossPayout  decimal.Decimal
	Match       string
	Tip         string
	FileName    string
}

// BetService defines the interface for the lay lifecycle
type BetService interface {
	// CreateBet debits the stake and records a pending lay
	CreateBet(ctx context.Context, params CreateBetParams) (*models.Bet, error)

	// TransitionBet moves a lay to a new status, applying wallet and weekly effects exactly once
	TransitionBet(ctx context.Context, betID uuid.UUID, newStatus models.BetStatus) (*models.Bet, error)

	// GetBet retrieves a lay by ID
	GetBet(ctx context.Context, betID uuid.UUID) (*models.Bet, error)

	// ListBets returns a user's lays, optionally filtered by status
	ListBets(ctx context.Context, userID int64, status *models.BetStatus, limit int) ([]*models.Bet, error)
}

// DepositService defines the interface for deposit address rotation
type DepositService interface {
	// NextAddress returns the address at the cursor and advances it
	NextAddress(ctx context.Context) (*models.DepositAddress, error)

	// SeedAddresses replaces the pool and resets the cursor to the first address
	SeedAddresses(ctx context.Context, addresses []string) error
}

// WithdrawService defines the interface for payout requests
type WithdrawService interface {
	// RequestWithdraw records a payout request without moving funds
	RequestWithdraw(ctx context.Context, userID int64, amount decimal.Decimal, address string) (*models.WithdrawRequest, error)
}

// RolloverService defines the interface for the weekly bonus rollover
type RolloverService interface {
	// RolloverWeek pays and resets every record up to the given week, returning the number of users paid
	RolloverWeek(ctx context.Context, week time.Time) (int, error)
}

// AccountService defines the interface for wallet overview operations
type AccountService interface {
	// OpenAccount creates a user with an initial balance
	OpenAccount(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error)

	// GetAccountInfo returns the wallet overview of a user
	GetAccountInfo(ctx context.Context, userID int64) (*models.AccountInfo, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// EventEmitter delivers an event immediately, outside any unit of work
type EventEmitter interface {
	Emit(ctx context.Context, event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	BetRepository() BetRepository
	WeeklyBonusRepository() WeeklyBonusRepository
	DepositRepository() DepositRepository
	WithdrawRequestRepository() WithdrawRequestRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

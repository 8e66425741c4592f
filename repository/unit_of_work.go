package repository

import (
	"context"
	"fmt"

	"layledger/database"
	"layledger/events"
	"layledger/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                  *database.DB
	tx                  pgx.Tx
	ctx                 context.Context
	transactionalBus    *events.TransactionalBus
	userRepo            service.UserRepository
	balanceHistoryRepo  service.BalanceHistoryRepository
	betRepo             service.BetRepository
	weeklyBonusRepo     service.WeeklyBonusRepository
	depositRepo         service.DepositRepository
	withdrawRequestRepo service.WithdrawRequestRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.balanceHistoryRepo = newBalanceHistoryRepositoryWithTx(tx)
	u.betRepo = newBetRepositoryWithTx(tx)
	u.weeklyBonusRepo = newWeeklyBonusRepositoryWithTx(tx)
	u.depositRepo = newDepositRepositoryWithTx(tx)
	u.withdrawRequestRepo = newWithdrawRequestRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes staged events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	u.tx = nil
	if err != nil {
		u.transactionalBus.Discard()
		return wrapError(err, "failed to commit transaction")
	}

	u.transactionalBus.Flush()

	return nil
}

// Rollback rolls back the transaction and drops staged events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.transactionalBus.Discard()

	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	return nil
}

// mustBeStarted panics when a repository is requested outside Begin/Commit
func (u *unitOfWork) mustBeStarted() {
	if u.tx == nil {
		panic("unit of work not started - call Begin() first")
	}
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	u.mustBeStarted()
	return u.userRepo
}

// BalanceHistoryRepository returns the balance history repository for this unit of work
func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	u.mustBeStarted()
	return u.balanceHistoryRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() service.BetRepository {
	u.mustBeStarted()
	return u.betRepo
}

// WeeklyBonusRepository returns the weekly bonus repository for this unit of work
func (u *unitOfWork) WeeklyBonusRepository() service.WeeklyBonusRepository {
	u.mustBeStarted()
	return u.weeklyBonusRepo
}

// DepositRepository returns the deposit repository for this unit of work
func (u *unitOfWork) DepositRepository() service.DepositRepository {
	u.mustBeStarted()
	return u.depositRepo
}

// WithdrawRequestRepository returns the withdraw request repository for this unit of work
func (u *unitOfWork) WithdrawRequestRepository() service.WithdrawRequestRepository {
	u.mustBeStarted()
	return u.withdrawRequestRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	u.mustBeStarted()
	return u.transactionalBus
}

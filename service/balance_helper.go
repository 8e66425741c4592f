package service

import (
	"context"
	"fmt"

	"layledger/events"
	"layledger/models"
	"github.com/shopspring/decimal"
)

// BalanceChange describes a signed wallet adjustment
type BalanceChange struct {
	UserID          int64
	Delta           decimal.Decimal
	TransactionType models.TransactionType
	RelatedID       *string
	RelatedType     *models.RelatedType
	Metadata        map[string]any
}

// AdjustBalance locks the user's wallet row and applies a signed delta.
// A result below zero fails with insufficient_balance and writes nothing.
// A zero delta only takes the lock. The row stays locked until the unit of work ends.
func AdjustBalance(ctx context.Context, uow UnitOfWork, change BalanceChange) (*models.User, error) {
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, change.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if user == nil {
		return nil, NewNotFoundError(ReasonUserNotFound, "user %d not found", change.UserID)
	}

	if change.Delta.IsZero() {
		return user, nil
	}
	if err := validateAmount("balance change", change.Delta); err != nil {
		return nil, err
	}

	newBalance := user.Balance.Add(change.Delta)
	if newBalance.IsNegative() {
		return nil, NewValidationError(ReasonInsufficientBalance,
			"insufficient balance: have %s, need %s", user.Balance, change.Delta.Neg())
	}
	if err := validateAmount("resulting balance", newBalance); err != nil {
		return nil, err
	}

	if err := uow.UserRepository().UpdateBalance(ctx, user.ID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:              user.ID,
		BalanceBefore:       user.Balance,
		BalanceAfter:        newBalance,
		ChangeAmount:        change.Delta,
		TransactionType:     change.TransactionType,
		TransactionMetadata: change.Metadata,
		RelatedID:           change.RelatedID,
		RelatedType:         change.RelatedType,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	user.Balance = newBalance
	return user, nil
}

// validateAmount rejects values a money column would round or overflow
func validateAmount(field string, amount decimal.Decimal) error {
	if !models.IsStorableAmount(amount) {
		return NewValidationError(ReasonInvalidAmount,
			"%s %s exceeds %d decimal places or the supported range", field, amount, models.MoneyScale)
	}
	return nil
}

// RecordBalanceChange records a balance history entry and stages the matching event.
// Every wallet change goes through here so the audit trail and the event stream agree.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
		RelatedID:       history.RelatedID,
	})

	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"layledger/models"
	"github.com/shopspring/decimal"
)

// accountHistoryLimit bounds the resolved lays returned in an account overview
const accountHistoryLimit = 20

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// OpenAccount creates a user and records the opening balance in the history
func (s *accountService) OpenAccount(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, NewValidationError(ReasonInvalidInput, "email is required")
	}
	if initialBalance.IsNegative() {
		return nil, NewValidationError(ReasonInvalidAmount, "initial balance must not be negative")
	}
	if err := validateAmount("initial balance", initialBalance); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().Create(ctx, email, initialBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    initialBalance,
		ChangeAmount:    initialBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"email": email,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// GetAccountInfo returns the balance, cached weekly cashback, pending lays and decided lays
func (s *accountService) GetAccountInfo(ctx context.Context, userID int64) (*models.AccountInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NewNotFoundError(ReasonUserNotFound, "user %d not found", userID)
	}

	pendingStatus := models.BetStatusPending
	pending, err := uow.BetRepository().GetByUser(ctx, userID, &pendingStatus, DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending lays: %w", err)
	}

	recent, err := uow.BetRepository().GetByUser(ctx, userID, nil, DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get lay history: %w", err)
	}

	history := make([]*models.Bet, 0, len(recent))
	for _, bet := range recent {
		if bet.Status.IsResolved() && len(history) < accountHistoryLimit {
			history = append(history, bet)
		}
	}

	return &models.AccountInfo{
		UserID:         user.ID,
		Balance:        user.Balance,
		WeeklyCashback: user.WeeklyCashback,
		PendingLays:    pending,
		History:        history,
	}, nil
}

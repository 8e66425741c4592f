package service

import (
	"context"
	"fmt"
	"strings"

	"layledger/events"
	"layledger/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type withdrawService struct {
	uowFactory UnitOfWorkFactory
}

// NewWithdrawService creates a new withdraw service
func NewWithdrawService(uowFactory UnitOfWorkFactory) WithdrawService {
	return &withdrawService{
		uowFactory: uowFactory,
	}
}

// RequestWithdraw records a payout request for an operator to settle. The wallet is
// only read: funds move when the operator pays out, not here.
func (s *withdrawService) RequestWithdraw(ctx context.Context, userID int64, amount decimal.Decimal, address string) (*models.WithdrawRequest, error) {
	if !amount.IsPositive() {
		return nil, NewValidationError(ReasonInvalidAmount, "withdraw amount must be positive")
	}
	if err := validateAmount("withdraw amount", amount); err != nil {
		return nil, err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, NewValidationError(ReasonInvalidInput, "withdraw address is required")
	}

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

	if amount.GreaterThan(user.Balance) {
		return nil, NewValidationError(ReasonInvalidAmount,
			"withdraw amount %s exceeds balance %s", amount, user.Balance)
	}

	request := &models.WithdrawRequest{
		ID:      uuid.New(),
		UserID:  userID,
		Amount:  amount,
		Address: address,
	}
	if err := uow.WithdrawRequestRepository().Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawRequestedEvent{
		RequestID: request.ID,
		UserID:    userID,
		Amount:    amount,
		Address:   address,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return request, nil
}

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

// DefaultListLimit caps list queries when the caller passes no limit
const DefaultListLimit = 50

type betService struct {
	uowFactory UnitOfWorkFactory
	now        Clock
}

// NewBetService creates a new bet service. A nil clock uses SystemClock.
func NewBetService(uowFactory UnitOfWorkFactory, clock Clock) BetService {
	if clock == nil {
		clock = SystemClock
	}
	return &betService{
		uowFactory: uowFactory,
		now:        clock,
	}
}

// CreateBet debits the stake from the wallet and records a pending lay in one transaction
func (s *betService) CreateBet(ctx context.Context, params CreateBetParams) (*models.Bet, error) {
	if err := validateCreateBet(params); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet := &models.Bet{
		ID:          uuid.New(),
		UserID:      params.UserID,
		TotalOdds:   params.TotalOdds,
		StakeAmount: params.StakeAmount,
		WinPayout:   params.WinPayout,
		LossPayout:  params.LossPayout,
		Match:       strings.TrimSpace(params.Match),
		Tip:         strings.TrimSpace(params.Tip),
		FileName:    params.FileName,
		Status:      models.BetStatusPending,
		CreatedAt:   s.now(),
	}

	relatedID := bet.ID.String()
	relatedType := models.RelatedTypeBet
	_, err := AdjustBalance(ctx, uow, BalanceChange{
		UserID:          bet.UserID,
		Delta:           bet.StakeAmount.Neg(),
		TransactionType: models.TransactionTypeBetStake,
		RelatedID:       &relatedID,
		RelatedType:     &relatedType,
		Metadata: map[string]any{
			"total_odds": bet.TotalOdds.String(),
			"match":      bet.Match,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create lay: %w", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:       bet.ID,
		UserID:      bet.UserID,
		StakeAmount: bet.StakeAmount,
		TotalOdds:   bet.TotalOdds,
		WinPayout:   bet.WinPayout,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// TransitionBet moves a lay to newStatus. The previous status's wallet credit and weekly
// delta are reverted and the new ones applied, so each effect lands exactly once no
// matter how many times the lay is re-decided. Locks are taken bet, wallet, weekly record.
func (s *betService) TransitionBet(ctx context.Context, betID uuid.UUID, newStatus models.BetStatus) (*models.Bet, error) {
	if !newStatus.IsValid() {
		return nil, NewValidationError(ReasonInvalidTransition, "unknown lay status %q", newStatus)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock lay: %w", err)
	}
	if bet == nil {
		return nil, NewNotFoundError(ReasonBetNotFound, "lay %s not found", betID)
	}

	transition := bet.Transition(bet.Status, newStatus)
	if transition.IsNoop() {
		return bet, nil
	}

	relatedID := bet.ID.String()
	relatedType := models.RelatedTypeBet
	_, err = AdjustBalance(ctx, uow, BalanceChange{
		UserID:          bet.UserID,
		Delta:           transition.WalletCredit,
		TransactionType: models.TransactionTypeBetSettlement,
		RelatedID:       &relatedID,
		RelatedType:     &relatedType,
		Metadata: map[string]any{
			"from_status": string(transition.From),
			"to_status":   string(transition.To),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle wallet: %w", err)
	}

	if !transition.WeeklyDelta.IsZero() {
		if _, err := ApplyWeeklyDelta(ctx, uow, bet.UserID, bet.CreatedAt, transition.WeeklyDelta, s.now()); err != nil {
			return nil, fmt.Errorf("failed to apply weekly delta: %w", err)
		}
	}

	bet.Status = newStatus
	if err := uow.BetRepository().UpdateStatus(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to update lay status: %w", err)
	}

	uow.EventBus().Publish(events.BetStatusChangedEvent{
		BetID:        bet.ID,
		UserID:       bet.UserID,
		OldStatus:    transition.From,
		NewStatus:    transition.To,
		WalletCredit: transition.WalletCredit,
		WeeklyDelta:  transition.WeeklyDelta,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// GetBet retrieves a lay by ID
func (s *betService) GetBet(ctx context.Context, betID uuid.UUID) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lay: %w", err)
	}
	if bet == nil {
		return nil, NewNotFoundError(ReasonBetNotFound, "lay %s not found", betID)
	}

	return bet, nil
}

// ListBets returns a user's lays, newest first
func (s *betService) ListBets(ctx context.Context, userID int64, status *models.BetStatus, limit int) ([]*models.Bet, error) {
	if status != nil && !status.IsValid() {
		return nil, NewValidationError(ReasonInvalidInput, "unknown lay status %q", *status)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByUser(ctx, userID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list lays: %w", err)
	}

	return bets, nil
}

func validateCreateBet(params CreateBetParams) error {
	if params.UserID <= 0 {
		return NewValidationError(ReasonInvalidInput, "user id is required")
	}
	if !params.StakeAmount.IsPositive() {
		return NewValidationError(ReasonInvalidAmount, "stake amount must be positive")
	}
	if !params.TotalOdds.IsPositive() {
		return NewValidationError(ReasonInvalidAmount, "total odds must be positive")
	}
	if params.WinPayout.IsNegative() {
		return NewValidationError(ReasonInvalidAmount, "win payout must not be negative")
	}
	if params.LossPayout.IsNegative() || params.LossPayout.GreaterThan(params.StakeAmount) {
		return NewValidationError(ReasonInvalidAmount, "loss payout must be between 0 and the stake amount")
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"stake amount", params.StakeAmount},
		{"total odds", params.TotalOdds},
		{"win payout", params.WinPayout},
		{"loss payout", params.LossPayout},
	}
	for _, a := range amounts {
		if err := validateAmount(a.field, a.value); err != nil {
			return err
		}
	}
	return nil
}

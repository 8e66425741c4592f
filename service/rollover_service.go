package service

import (
	"context"
	"fmt"
	"time"

	"layledger/events"
	"layledger/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type rolloverService struct {
	uowFactory UnitOfWorkFactory
	runRepo    RolloverRunRepository
	emitter    EventEmitter
	now        Clock
}

// NewRolloverService creates a new weekly rollover service. emitter may be nil;
// a nil clock uses SystemClock.
func NewRolloverService(uowFactory UnitOfWorkFactory, runRepo RolloverRunRepository, emitter EventEmitter, clock Clock) RolloverService {
	if clock == nil {
		clock = SystemClock
	}
	return &rolloverService{
		uowFactory: uowFactory,
		runRepo:    runRepo,
		emitter:    emitter,
		now:        clock,
	}
}

// recordOutcome is the result of rolling over a single weekly record
type recordOutcome struct {
	userID int64
	paid   decimal.Decimal
	reset  bool
}

// RolloverWeek pays every accrued reward of the weeks up to and including week and
// resets their counters. Each record runs in its own transaction; a failing record is
// logged and counted without stopping the others. Re-running finds nothing to pay.
func (s *rolloverService) RolloverWeek(ctx context.Context, week time.Time) (int, error) {
	weekStart, _ := models.WeekRange(week)

	ids, err := s.listRecordIDs(ctx, weekStart)
	if err != nil {
		return 0, err
	}

	paidUsers := make(map[int64]bool)
	totalPaid := decimal.Zero
	recordsReset := 0
	var failedIDs []int64

	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		outcome, err := s.rolloverRecord(ctx, id)
		if err != nil {
			log.WithFields(log.Fields{
				"weekly_bonus_id": id,
				"week_start":      weekStart.Format(time.DateOnly),
				"error":           err,
			}).Error("Failed to roll over weekly bonus")
			failedIDs = append(failedIDs, id)
			continue
		}

		if outcome.reset {
			recordsReset++
		}
		if outcome.paid.IsPositive() {
			paidUsers[outcome.userID] = true
			totalPaid = totalPaid.Add(outcome.paid)
		}
	}

	run := &models.RolloverRun{
		WeekStart:    weekStart,
		UsersPaid:    len(paidUsers),
		TotalPaid:    totalPaid,
		RecordsReset: recordsReset,
		Failures:     len(failedIDs),
		ExecutionSummary: map[string]interface{}{
			"records_seen":      len(ids),
			"failed_record_ids": failedIDs,
			"completed_at":      s.now().Format(time.RFC3339),
		},
	}

	// The run is recorded even when ctx was cancelled part way through
	if err := s.runRepo.Upsert(context.WithoutCancel(ctx), run); err != nil {
		log.WithError(err).Error("Failed to record rollover run")
	}

	log.WithFields(log.Fields{
		"week_start":    weekStart.Format(time.DateOnly),
		"records_seen":  len(ids),
		"records_reset": recordsReset,
		"users_paid":    len(paidUsers),
		"total_paid":    totalPaid.String(),
		"failures":      len(failedIDs),
	}).Info("Completed weekly rollover")

	if s.emitter != nil {
		s.emitter.Emit(ctx, events.RolloverCompletedEvent{
			WeekStart:    weekStart,
			UsersPaid:    len(paidUsers),
			TotalPaid:    totalPaid,
			RecordsReset: recordsReset,
			Failures:     len(failedIDs),
		})
	}

	if err := ctx.Err(); err != nil {
		return len(paidUsers), fmt.Errorf("rollover interrupted: %w", err)
	}

	return len(paidUsers), nil
}

func (s *rolloverService) listRecordIDs(ctx context.Context, weekStart time.Time) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.WeeklyBonusRepository().ListIDsUpTo(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly bonuses: %w", err)
	}

	return ids, nil
}

// rolloverRecord pays and resets one record, locking wallet then record
func (s *rolloverService) rolloverRecord(ctx context.Context, id int64) (recordOutcome, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return recordOutcome{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// user_id never changes, so it is safe to read before taking any lock
	snapshot, err := uow.WeeklyBonusRepository().GetByID(ctx, id)
	if err != nil {
		return recordOutcome{}, fmt.Errorf("failed to get weekly bonus: %w", err)
	}
	if snapshot == nil {
		return recordOutcome{}, nil
	}

	user, err := uow.UserRepository().GetByIDForUpdate(ctx, snapshot.UserID)
	if err != nil {
		return recordOutcome{}, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if user == nil {
		return recordOutcome{}, NewNotFoundError(ReasonUserNotFound, "user %d not found", snapshot.UserID)
	}

	bonus, err := uow.WeeklyBonusRepository().GetByIDForUpdate(ctx, id)
	if err != nil {
		return recordOutcome{}, fmt.Errorf("failed to lock weekly bonus: %w", err)
	}
	if bonus == nil {
		return recordOutcome{}, nil
	}

	outcome := recordOutcome{userID: bonus.UserID, paid: decimal.Zero}
	if bonus.WeeklyReward.IsPositive() {
		relatedID := fmt.Sprintf("%d", bonus.ID)
		relatedType := models.RelatedTypeWeeklyBonus
		_, err := AdjustBalance(ctx, uow, BalanceChange{
			UserID:          bonus.UserID,
			Delta:           bonus.WeeklyReward,
			TransactionType: models.TransactionTypeWeeklyReward,
			RelatedID:       &relatedID,
			RelatedType:     &relatedType,
			Metadata: map[string]any{
				"week_start":     bonus.WeekStart.Format(time.DateOnly),
				"weekly_balance": bonus.WeeklyBalance.String(),
			},
		})
		if err != nil {
			return recordOutcome{}, fmt.Errorf("failed to credit weekly reward: %w", err)
		}

		uow.EventBus().Publish(events.WeeklyRewardPaidEvent{
			UserID:        bonus.UserID,
			WeeklyBonusID: bonus.ID,
			WeekStart:     bonus.WeekStart,
			Amount:        bonus.WeeklyReward,
		})
		outcome.paid = bonus.WeeklyReward
	}

	bonus.Reset()
	if err := uow.WeeklyBonusRepository().Update(ctx, bonus); err != nil {
		return recordOutcome{}, fmt.Errorf("failed to reset weekly bonus: %w", err)
	}
	outcome.reset = true

	if err := s.refreshCashback(ctx, uow, bonus.UserID); err != nil {
		return recordOutcome{}, err
	}

	if err := uow.Commit(); err != nil {
		return recordOutcome{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return outcome, nil
}

// refreshCashback points the cached cashback at the current week's reward
func (s *rolloverService) refreshCashback(ctx context.Context, uow UnitOfWork, userID int64) error {
	currentStart, _ := models.WeekRange(s.now())

	current, err := uow.WeeklyBonusRepository().GetByUserAndWeek(ctx, userID, currentStart)
	if err != nil {
		return fmt.Errorf("failed to get current weekly bonus: %w", err)
	}

	cashback := decimal.Zero
	if current != nil {
		cashback = current.WeeklyReward
	}

	if err := uow.UserRepository().UpdateWeeklyCashback(ctx, userID, cashback); err != nil {
		return fmt.Errorf("failed to refresh weekly cashback: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"layledger/database"
	"layledger/models"
	"github.com/jackc/pgx/v5"
)

// RolloverRunRepository implements the RolloverRunRepository interface
type RolloverRunRepository struct {
	db *database.DB
}

// NewRolloverRunRepository creates a new rollover run repository
func NewRolloverRunRepository(db *database.DB) *RolloverRunRepository {
	return &RolloverRunRepository{db: db}
}

// GetByWeek returns the run recorded for the week starting on weekStart
func (r *RolloverRunRepository) GetByWeek(ctx context.Context, weekStart time.Time) (*models.RolloverRun, error) {
	weekStart = dateOnly(weekStart)

	query := `
		SELECT id, week_start, users_paid, total_paid, records_reset, failures,
		       execution_summary, created_at
		FROM rollover_runs
		WHERE week_start = $1
	`

	var run models.RolloverRun
	var summaryJSON []byte

	err := r.db.QueryRow(ctx, query, weekStart).Scan(
		&run.ID,
		&run.WeekStart,
		&run.UsersPaid,
		&run.TotalPaid,
		&run.RecordsReset,
		&run.Failures,
		&summaryJSON,
		&run.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rollover run for week %s: %w", weekStart.Format(time.DateOnly), err)
	}

	if len(summaryJSON) > 0 {
		if err := json.Unmarshal(summaryJSON, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution summary: %w", err)
		}
	}

	return &run, nil
}

// Upsert records a run. A re-run of the same week adds its counts to the existing row
// and replaces the summary; run is updated with the stored totals.
func (r *RolloverRunRepository) Upsert(ctx context.Context, run *models.RolloverRun) error {
	run.WeekStart = dateOnly(run.WeekStart)

	summaryJSON, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to marshal execution summary: %w", err)
	}

	query := `
		INSERT INTO rollover_runs
		(week_start, users_paid, total_paid, records_reset, failures, execution_summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (week_start) DO UPDATE SET
			users_paid = rollover_runs.users_paid + EXCLUDED.users_paid,
			total_paid = rollover_runs.total_paid + EXCLUDED.total_paid,
			records_reset = rollover_runs.records_reset + EXCLUDED.records_reset,
			failures = rollover_runs.failures + EXCLUDED.failures,
			execution_summary = EXCLUDED.execution_summary
		RETURNING id, users_paid, total_paid, records_reset, failures, created_at
	`

	err = r.db.QueryRow(ctx, query,
		run.WeekStart,
		run.UsersPaid,
		run.TotalPaid,
		run.RecordsReset,
		run.Failures,
		summaryJSON,
	).Scan(&run.ID, &run.UsersPaid, &run.TotalPaid, &run.RecordsReset, &run.Failures, &run.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record rollover run for week %s: %w", run.WeekStart.Format(time.DateOnly), err)
	}

	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

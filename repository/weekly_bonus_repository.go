package repository

import (
	"context"
	"fmt"
	"time"

	"layledger/database"
	"layledger/models"
	"github.com/jackc/pgx/v5"
)

const weeklyBonusColumns = `id, user_id, week_start, week_end, weekly_balance, weekly_reward, created_at, updated_at`

// WeeklyBonusRepository implements the WeeklyBonusRepository interface
type WeeklyBonusRepository struct {
	q queryable
}

// NewWeeklyBonusRepository creates a new weekly bonus repository
func NewWeeklyBonusRepository(db *database.DB) *WeeklyBonusRepository {
	return &WeeklyBonusRepository{q: db.Pool}
}

// newWeeklyBonusRepositoryWithTx creates a new weekly bonus repository with a transaction
func newWeeklyBonusRepositoryWithTx(tx queryable) *WeeklyBonusRepository {
	return &WeeklyBonusRepository{q: tx}
}

// GetOrCreateForUpdate ensures the (user, week) record exists and locks it.
// The insert waits on a concurrent creator, so exactly one row survives.
func (r *WeeklyBonusRepository) GetOrCreateForUpdate(ctx context.Context, userID int64, weekStart, weekEnd time.Time) (*models.WeeklyBonus, error) {
	insert := `
		INSERT INTO weekly_bonuses (user_id, week_start, week_end)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, week_start, week_end) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, insert, userID, weekStart, weekEnd); err != nil {
		return nil, wrapError(err, "failed to create weekly bonus for user %d", userID)
	}

	query := `
		SELECT ` + weeklyBonusColumns + `
		FROM weekly_bonuses
		WHERE user_id = $1 AND week_start = $2 AND week_end = $3
		FOR UPDATE
	`

	bonus, err := scanWeeklyBonus(r.q.QueryRow(ctx, query, userID, weekStart, weekEnd))
	if err != nil {
		return nil, wrapError(err, "failed to lock weekly bonus for user %d week %s",
			userID, weekStart.Format(time.DateOnly))
	}

	return bonus, nil
}

// GetByID reads a record by ID without locking
func (r *WeeklyBonusRepository) GetByID(ctx context.Context, id int64) (*models.WeeklyBonus, error) {
	query := `SELECT ` + weeklyBonusColumns + ` FROM weekly_bonuses WHERE id = $1`

	bonus, err := scanWeeklyBonus(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get weekly bonus %d", id)
	}

	return bonus, nil
}

// GetByIDForUpdate locks a record by ID
func (r *WeeklyBonusRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.WeeklyBonus, error) {
	query := `SELECT ` + weeklyBonusColumns + ` FROM weekly_bonuses WHERE id = $1 FOR UPDATE`

	bonus, err := scanWeeklyBonus(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to lock weekly bonus %d", id)
	}

	return bonus, nil
}

// GetByUserAndWeek reads a record without locking
func (r *WeeklyBonusRepository) GetByUserAndWeek(ctx context.Context, userID int64, weekStart time.Time) (*models.WeeklyBonus, error) {
	query := `SELECT ` + weeklyBonusColumns + ` FROM weekly_bonuses WHERE user_id = $1 AND week_start = $2`

	bonus, err := scanWeeklyBonus(r.q.QueryRow(ctx, query, userID, weekStart))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get weekly bonus for user %d", userID)
	}

	return bonus, nil
}

// Update persists the balance and reward together
func (r *WeeklyBonusRepository) Update(ctx context.Context, bonus *models.WeeklyBonus) error {
	query := `
		UPDATE weekly_bonuses
		SET weekly_balance = $1, weekly_reward = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, bonus.WeeklyBalance, bonus.WeeklyReward, bonus.ID).Scan(&bonus.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("weekly bonus %d not found", bonus.ID)
	}
	if err != nil {
		return wrapError(err, "failed to update weekly bonus %d", bonus.ID)
	}

	return nil
}

// ListIDsUpTo returns the IDs of records with a week starting on or before weekStart.
// Records already at zero are left out since a rollover would not change them.
func (r *WeeklyBonusRepository) ListIDsUpTo(ctx context.Context, weekStart time.Time) ([]int64, error) {
	query := `
		SELECT id
		FROM weekly_bonuses
		WHERE week_start <= $1
		  AND (weekly_balance <> 0 OR weekly_reward <> 0)
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, weekStart)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly bonuses up to %s: %w", weekStart.Format(time.DateOnly), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to collect weekly bonus ids: %w", err)
	}

	return ids, nil
}

func scanWeeklyBonus(row pgx.Row) (*models.WeeklyBonus, error) {
	var bonus models.WeeklyBonus
	err := row.Scan(
		&bonus.ID,
		&bonus.UserID,
		&bonus.WeekStart,
		&bonus.WeekEnd,
		&bonus.WeeklyBalance,
		&bonus.WeeklyReward,
		&bonus.CreatedAt,
		&bonus.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bonus, nil
}

package repository

import (
	"context"
	"fmt"

	"layledger/database"
	"layledger/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const betColumns = `id, user_id, total_odds, stake_amount, win_payout, loss_payout,
		match, tip, file_name, status, created_at, updated_at`

// BetRepository implements the BetRepository interface over the lays table
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create inserts a new lay. The caller sets ID, status and created_at.
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO lays
		(id, user_id, total_odds, stake_amount, win_payout, loss_payout, match, tip, file_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.ID,
		bet.UserID,
		bet.TotalOdds,
		bet.StakeAmount,
		bet.WinPayout,
		bet.LossPayout,
		bet.Match,
		bet.Tip,
		bet.FileName,
		bet.Status,
		bet.CreatedAt,
	).Scan(&bet.UpdatedAt)

	if err != nil {
		return wrapError(err, "failed to create lay for user %d", bet.UserID)
	}

	return nil
}

// GetByID retrieves a lay by its ID
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM lays WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get lay %s", id)
	}

	return bet, nil
}

// GetByIDForUpdate retrieves a lay and holds its row lock until the transaction ends
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM lays WHERE id = $1 FOR UPDATE`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to lock lay %s", id)
	}

	return bet, nil
}

// UpdateStatus persists the lay's status and refreshes updated_at
func (r *BetRepository) UpdateStatus(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE lays
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, bet.Status, bet.ID).Scan(&bet.UpdatedAt)
	if err == pgx.ErrNoRows {
		return fmt.Errorf("lay %s not found", bet.ID)
	}
	if err != nil {
		return wrapError(err, "failed to update status of lay %s", bet.ID)
	}

	return nil
}

// GetByUser returns a user's lays, newest first. A nil status returns every status.
func (r *BetRepository) GetByUser(ctx context.Context, userID int64, status *models.BetStatus, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM lays
		WHERE user_id = $1
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.q.Query(ctx, query, userID, statusArg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get lays for user %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lay: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lays: %w", err)
	}

	return bets, nil
}

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.TotalOdds,
		&bet.StakeAmount,
		&bet.WinPayout,
		&bet.LossPayout,
		&bet.Match,
		&bet.Tip,
		&bet.FileName,
		&bet.Status,
		&bet.CreatedAt,
		&bet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

package repository

import (
	"context"
	"fmt"

	"layledger/database"
	"layledger/models"
)

// WithdrawRequestRepository implements the WithdrawRequestRepository interface
type WithdrawRequestRepository struct {
	q queryable
}

// NewWithdrawRequestRepository creates a new withdraw request repository
func NewWithdrawRequestRepository(db *database.DB) *WithdrawRequestRepository {
	return &WithdrawRequestRepository{q: db.Pool}
}

// newWithdrawRequestRepositoryWithTx creates a new withdraw request repository with a transaction
func newWithdrawRequestRepositoryWithTx(tx queryable) *WithdrawRequestRepository {
	return &WithdrawRequestRepository{q: tx}
}

// Create inserts a new withdraw request
func (r *WithdrawRequestRepository) Create(ctx context.Context, request *models.WithdrawRequest) error {
	query := `
		INSERT INTO withdraw_requests (id, user_id, amount, address)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.ID,
		request.UserID,
		request.Amount,
		request.Address,
	).Scan(&request.CreatedAt)

	if err != nil {
		return wrapError(err, "failed to create withdraw request for user %d", request.UserID)
	}

	return nil
}

// GetByUser returns a user's requests, newest first
func (r *WithdrawRequestRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WithdrawRequest, error) {
	query := `
		SELECT id, user_id, amount, address, created_at
		FROM withdraw_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get withdraw requests for user %d: %w", userID, err)
	}
	defer rows.Close()

	var requests []*models.WithdrawRequest
	for rows.Next() {
		var request models.WithdrawRequest
		if err := rows.Scan(&request.ID, &request.UserID, &request.Amount, &request.Address, &request.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdraw request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdraw requests: %w", err)
	}

	return requests, nil
}

package repository

import (
	"context"
	"fmt"

	"layledger/database"
	"layledger/models"
	"github.com/jackc/pgx/v5"
)

// DepositRepository implements the DepositRepository interface
type DepositRepository struct {
	q queryable
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *database.DB) *DepositRepository {
	return &DepositRepository{q: db.Pool}
}

// newDepositRepositoryWithTx creates a new deposit repository with a transaction
func newDepositRepositoryWithTx(tx queryable) *DepositRepository {
	return &DepositRepository{q: tx}
}

// GetRotationForUpdate locks the rotation singleton
func (r *DepositRepository) GetRotationForUpdate(ctx context.Context) (*models.DepositRotation, error) {
	query := `
		SELECT current_index, last_updated
		FROM deposit_rotation
		WHERE singleton
		FOR UPDATE
	`

	var rotation models.DepositRotation
	err := r.q.QueryRow(ctx, query).Scan(&rotation.CurrentIndex, &rotation.LastUpdated)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to lock deposit rotation")
	}

	return &rotation, nil
}

// MaxIndex returns the highest pool index, 0 when the pool is empty
func (r *DepositRepository) MaxIndex(ctx context.Context) (int, error) {
	var maxIndex int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(idx), 0) FROM deposit_addresses`).Scan(&maxIndex)
	if err != nil {
		return 0, fmt.Errorf("failed to get max deposit index: %w", err)
	}
	return maxIndex, nil
}

// GetAddressByIndex returns the address at a pool index
func (r *DepositRepository) GetAddressByIndex(ctx context.Context, index int) (*models.DepositAddress, error) {
	query := `SELECT id, address, idx FROM deposit_addresses WHERE idx = $1`

	var address models.DepositAddress
	err := r.q.QueryRow(ctx, query, index).Scan(&address.ID, &address.Address, &address.Index)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deposit address %d: %w", index, err)
	}

	return &address, nil
}

// RecordIssue appends an issued address to deposit_issues
func (r *DepositRepository) RecordIssue(ctx context.Context, address *models.DepositAddress) error {
	_, err := r.q.Exec(ctx, `INSERT INTO deposit_issues (address, idx) VALUES ($1, $2)`, address.Address, address.Index)
	if err != nil {
		return wrapError(err, "failed to record deposit issue")
	}
	return nil
}

// UpdateRotation stores the next index to serve
func (r *DepositRepository) UpdateRotation(ctx context.Context, currentIndex int) error {
	query := `
		UPDATE deposit_rotation
		SET current_index = $1, last_updated = NOW()
		WHERE singleton
	`

	result, err := r.q.Exec(ctx, query, currentIndex)
	if err != nil {
		return wrapError(err, "failed to update deposit rotation")
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("deposit rotation not found")
	}

	return nil
}

// ReplacePool swaps the pool for the given addresses, indexed from 1, and resets the cursor.
// The rotation row is written first so concurrent allocators wait for the new pool.
func (r *DepositRepository) ReplacePool(ctx context.Context, addresses []string) error {
	upsertRotation := `
		INSERT INTO deposit_rotation (singleton, current_index, last_updated)
		VALUES (TRUE, 1, NOW())
		ON CONFLICT (singleton) DO UPDATE
		SET current_index = 1, last_updated = NOW()
	`
	if _, err := r.q.Exec(ctx, upsertRotation); err != nil {
		return wrapError(err, "failed to reset deposit rotation")
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM deposit_addresses`); err != nil {
		return fmt.Errorf("failed to clear deposit addresses: %w", err)
	}

	insert := `
		INSERT INTO deposit_addresses (address, idx)
		SELECT address, idx
		FROM unnest($1::text[]) WITH ORDINALITY AS pool(address, idx)
	`
	if _, err := r.q.Exec(ctx, insert, addresses); err != nil {
		return wrapError(err, "failed to insert %d deposit addresses", len(addresses))
	}

	return nil
}

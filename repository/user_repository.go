package repository

import (
	"context"
	"fmt"

	"layledger/database"
	"layledger/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, balance, weekly_cashback, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to get user %d", id)
	}

	return user, nil
}

// GetByIDForUpdate retrieves a user and holds the wallet row lock until the transaction ends
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(err, "failed to lock user %d", id)
	}

	return user, nil
}

// Create creates a new user with the initial balance
func (r *UserRepository) Create(ctx context.Context, email string, initialBalance decimal.Decimal) (*models.User, error) {
	query := `
		INSERT INTO users (email, balance)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, email, initialBalance))
	if err != nil {
		return nil, wrapError(err, "failed to create user %s", email)
	}

	return user, nil
}

// UpdateBalance stores a new wallet balance
func (r *UserRepository) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	query := `
		UPDATE users
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, id)
	if err != nil {
		return wrapError(err, "failed to update balance for user %d", id)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

// UpdateWeeklyCashback stores the cached reward of the current week
func (r *UserRepository) UpdateWeeklyCashback(ctx context.Context, id int64, cashback decimal.Decimal) error {
	query := `
		UPDATE users
		SET weekly_cashback = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, cashback, id)
	if err != nil {
		return wrapError(err, "failed to update weekly cashback for user %d", id)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Balance,
		&user.WeeklyCashback,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

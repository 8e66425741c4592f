package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"layledger/database"
	"layledger/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var emailSeq atomic.Int64

// Money parses a decimal literal, panicking on malformed input
func Money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// CreateTestUser inserts a user with the given balance
func CreateTestUser(t *testing.T, db *database.DB, balance decimal.Decimal) *models.User {
	t.Helper()

	email := fmt.Sprintf("user%d@example.com", emailSeq.Add(1))
	user := &models.User{Email: email}

	err := db.QueryRow(context.Background(), `
		INSERT INTO users (email, balance)
		VALUES ($1, $2)
		RETURNING id, balance, weekly_cashback, created_at, updated_at
	`, email, balance).Scan(&user.ID, &user.Balance, &user.WeeklyCashback, &user.CreatedAt, &user.UpdatedAt)
	require.NoError(t, err)

	return user
}

// NewTestBet returns an unsaved pending lay for userID
func NewTestBet(userID int64, stake, win, loss string) *models.Bet {
	now := time.Now().UTC()
	return &models.Bet{
		ID:          uuid.New(),
		UserID:      userID,
		TotalOdds:   Money("2.5"),
		StakeAmount: Money(stake),
		WinPayout:   Money(win),
		LossPayout:  Money(loss),
		Match:       "Home vs Away",
		Tip:         "Over 2.5",
		FileName:    "slip.png",
		Status:      models.BetStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// SeedDepositAddresses inserts count addresses named Deposit_Address_{i} and a cursor at 1
func SeedDepositAddresses(t *testing.T, db *database.DB, count int) []string {
	t.Helper()

	addresses := make([]string, count)
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		for i := range addresses {
			addresses[i] = fmt.Sprintf("Deposit_Address_%d", i+1)
			if _, err := tx.Exec(context.Background(), `INSERT INTO deposit_addresses (address, idx) VALUES ($1, $2)`, addresses[i], i+1); err != nil {
				return err
			}
		}

		_, err := tx.Exec(context.Background(), `
			INSERT INTO deposit_rotation (singleton, current_index)
			VALUES (TRUE, 1)
			ON CONFLICT (singleton) DO UPDATE SET current_index = 1
		`)
		return err
	})
	require.NoError(t, err)

	return addresses
}

// GetBalance reads a user's wallet balance directly
func GetBalance(t *testing.T, db *database.DB, userID int64) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), `SELECT balance FROM users WHERE id = $1`, userID).Scan(&balance)
	require.NoError(t, err)

	return balance
}

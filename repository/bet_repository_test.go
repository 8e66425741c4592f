package repository

import (
	"context"
	"testing"
	"time"

	"layledger/models"
	"layledger/repository/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, testDB.DB, testutil.Money("100"))

	t.Run("create and get", func(t *testing.T) {
		bet := testutil.NewTestBet(user.ID, "10", "60", "2")
		require.NoError(t, repo.Create(ctx, bet))

		found, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		assert.Equal(t, bet.UserID, found.UserID)
		assert.Equal(t, models.BetStatusPending, found.Status)
		assert.True(t, found.StakeAmount.Equal(testutil.Money("10")))
		assert.True(t, found.WinPayout.Equal(testutil.Money("60")))
		assert.True(t, found.LossPayout.Equal(testutil.Money("2")))
		assert.Equal(t, "Home vs Away", found.Match)
		assert.WithinDuration(t, bet.CreatedAt, found.CreatedAt, time.Millisecond)
	})

	t.Run("missing lay returns nil", func(t *testing.T) {
		found, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)

		locked, err := repo.GetByIDForUpdate(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, locked)
	})

	t.Run("update status", func(t *testing.T) {
		bet := testutil.NewTestBet(user.ID, "5", "20", "0")
		require.NoError(t, repo.Create(ctx, bet))

		bet.Status = models.BetStatusApproved
		require.NoError(t, repo.UpdateStatus(ctx, bet))

		found, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BetStatusApproved, found.Status)
		assert.WithinDuration(t, bet.CreatedAt, found.CreatedAt, time.Millisecond)
	})

	t.Run("list by user with status filter", func(t *testing.T) {
		other := testutil.CreateTestUser(t, testDB.DB, testutil.Money("100"))

		pending := testutil.NewTestBet(other.ID, "1", "2", "0")
		require.NoError(t, repo.Create(ctx, pending))

		declined := testutil.NewTestBet(other.ID, "1", "2", "0")
		declined.Status = models.BetStatusDeclined
		declined.CreatedAt = pending.CreatedAt.Add(time.Second)
		require.NoError(t, repo.Create(ctx, declined))

		all, err := repo.GetByUser(ctx, other.ID, nil, 10)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, declined.ID, all[0].ID, "newest first")

		status := models.BetStatusPending
		onlyPending, err := repo.GetByUser(ctx, other.ID, &status, 10)
		require.NoError(t, err)
		require.Len(t, onlyPending, 1)
		assert.Equal(t, pending.ID, onlyPending[0].ID)
	})
}

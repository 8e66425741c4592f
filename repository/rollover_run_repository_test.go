package repository

import (
	"context"
	"testing"
	"time"

	"layledger/models"
	"layledger/repository/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolloverRunRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRolloverRunRepository(testDB.DB)
	ctx := context.Background()
	weekStart := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	t.Run("no run found", func(t *testing.T) {
		run, err := repo.GetByWeek(ctx, weekStart)
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("upsert accumulates re-runs", func(t *testing.T) {
		first := &models.RolloverRun{
			WeekStart:    weekStart.Add(13 * time.Hour),
			UsersPaid:    2,
			TotalPaid:    testutil.Money("12.5"),
			RecordsReset: 3,
			ExecutionSummary: map[string]interface{}{
				"records_seen": 3,
			},
		}
		require.NoError(t, repo.Upsert(ctx, first))
		assert.Equal(t, weekStart, first.WeekStart, "week is normalized to the date")

		second := &models.RolloverRun{
			WeekStart:    weekStart,
			UsersPaid:    1,
			TotalPaid:    testutil.Money("2"),
			RecordsReset: 1,
			Failures:     1,
			ExecutionSummary: map[string]interface{}{
				"records_seen": 2,
			},
		}
		require.NoError(t, repo.Upsert(ctx, second))
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 3, second.UsersPaid)
		assert.True(t, second.TotalPaid.Equal(testutil.Money("14.5")))

		run, err := repo.GetByWeek(ctx, weekStart)
		require.NoError(t, err)
		require.NotNil(t, run)
		assert.Equal(t, 3, run.UsersPaid)
		assert.Equal(t, 4, run.RecordsReset)
		assert.Equal(t, 1, run.Failures)
		assert.EqualValues(t, 2, run.ExecutionSummary["records_seen"])
	})
}

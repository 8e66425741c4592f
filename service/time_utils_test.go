package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextRolloverTime(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		expected time.Time
	}{
		{
			name:     "midweek schedules next monday",
			now:      time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 1, 0, 0, time.UTC),
		},
		{
			name:     "monday before the slot runs today",
			now:      time.Date(2024, 1, 8, 0, 0, 30, 0, time.UTC),
			expected: time.Date(2024, 1, 8, 0, 1, 0, 0, time.UTC),
		},
		{
			name:     "exactly at the slot waits a week",
			now:      time.Date(2024, 1, 8, 0, 1, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 1, 0, 0, time.UTC),
		},
		{
			name:     "sunday night",
			now:      time.Date(2024, 1, 14, 23, 59, 0, 0, time.UTC),
			expected: time.Date(2024, 1, 15, 0, 1, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextRolloverTime(tt.now, 0, 1))
		})
	}
}

func TestPreviousWeek(t *testing.T) {
	prev := PreviousWeek(time.Date(2024, 1, 8, 0, 1, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), prev)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RolloverRun records the outcome of paying out and resetting one week's bonuses
type RolloverRun struct {
	ID               int64                  `db:"id"`
	WeekStart        time.Time              `db:"week_start"`
	UsersPaid        int                    `db:"users_paid"`
	TotalPaid        decimal.Decimal        `db:"total_paid"`
	RecordsReset     int                    `db:"records_reset"`
	Failures         int                    `db:"failures"`
	ExecutionSummary map[string]interface{} `db:"execution_summary"`
	CreatedAt        time.Time              `db:"created_at"`
}

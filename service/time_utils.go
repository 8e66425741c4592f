package service

import (
	"time"

	"layledger/models"
)

// NextRolloverTime returns the next Monday at hour:minute UTC strictly after now
func NextRolloverTime(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	monday, _ := models.WeekRange(now)
	next := monday.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

	// This week's slot has passed, use next week's
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}

	return next
}

// PreviousWeek returns a time inside the week before the one containing now
func PreviousWeek(now time.Time) time.Time {
	monday, _ := models.WeekRange(now)
	return monday.AddDate(0, 0, -7)
}

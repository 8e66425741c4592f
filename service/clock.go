package service

import "time"

// Clock returns the current time. Services take one so tests can pin the week.
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}

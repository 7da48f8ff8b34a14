// Package common holds small helpers shared across the data layer.
package common

import "time"

// NextDays returns the n calendar dates strictly after anchor, in order.
// The anchor itself is excluded. Dates are normalized to midnight UTC so
// they compare cleanly against record dates; month and year rollover is
// handled by the calendar arithmetic (Feb 28 + 7 lands in March, Dec 28
// + 7 lands in January of the following year).
func NextDays(anchor time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	base := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, base.AddDate(0, 0, i))
	}
	return days
}

// InWindow reports whether date (compared at calendar-day granularity)
// falls inside the given window.
func InWindow(date time.Time, window []time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	for _, w := range window {
		if day.Equal(w) {
			return true
		}
	}
	return false
}

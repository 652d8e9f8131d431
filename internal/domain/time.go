package domain

import "time"

// TodayBucket is the calendar-day bucket used for derived idempotency keys.
func TodayBucket() string {
	return time.Now().UTC().Format("2006-01-02")
}

package billing

import (
	"fmt"
	"time"
)

type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// NextChargeDate advances from by one period.
func NextChargeDate(from time.Time, f Frequency) (time.Time, error) {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case FrequencyMonthly:
		return addMonthsClamped(from, 1), nil
	case FrequencyYearly:
		return addMonthsClamped(from, 12), nil
	}
	return time.Time{}, fmt.Errorf("unknown frequency %q", f)
}

// addMonthsClamped keeps month-end schedules on the last day instead of
// spilling into the following month (Jan 31 + 1 month = Feb 28/29).
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// InstallmentDone reports whether a plan has run its course after paid
// installments, given an optional cap and end date.
func InstallmentDone(paid, total int, next time.Time, end *time.Time) bool {
	if total > 0 && paid >= total {
		return true
	}
	if end != nil && next.After(*end) {
		return true
	}
	return false
}

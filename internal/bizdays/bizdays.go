// Package bizdays computes remaining business days between two dates.
package bizdays

import "time"

// Unknown is returned when the span cannot be computed. It is far outside the
// urgency window, so downstream filtering excludes it naturally.
const Unknown = 999

// Spans longer than this are treated as unusable input rather than iterated.
const maxSpanDays = 36500

// Between counts the business days remaining from start to end, excluding
// weekends. Holidays are not considered.
//
// The convention is: weekdays in the inclusive range [start, end], minus one.
// The start date itself is not a remaining business day, so Monday to Friday
// of the same week yields 4 and Friday to the next Monday yields 1. Downstream
// urgency thresholds were tuned against this exact convention; do not change
// it without re-deriving the window.
func Between(start, end time.Time) int {
	start = dateOnly(start)
	end = dateOnly(end)
	if !start.Before(end) {
		return 0
	}
	if end.Sub(start) > maxSpanDays*24*time.Hour {
		return Unknown
	}

	weekdays := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			weekdays++
		}
	}
	return weekdays - 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

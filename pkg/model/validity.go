package model

import "time"

// ValiditySpan is the date range over which the static schedule dataset
// is asserted accurate. Lookups outside the span are invalid, not stale.
type ValiditySpan struct {
	ValidFrom  time.Time `json:"valid_from" groups:"basic,detailed"`
	ValidUntil time.Time `json:"valid_until" groups:"basic,detailed"`
	ExportDate time.Time `json:"export_date" groups:"basic,detailed"`
}

// IsDateValid reports whether date falls inside the span, bounds
// inclusive. Only the calendar date matters.
func (v ValiditySpan) IsDateValid(date time.Time) bool {
	day := truncateToDay(date)

	return !day.Before(truncateToDay(v.ValidFrom)) && !day.After(truncateToDay(v.ValidUntil))
}

func (v ValiditySpan) IsCurrent(now time.Time) bool {
	return v.IsDateValid(now)
}

func (v ValiditySpan) DaysRemaining(now time.Time) int {
	remaining := int(truncateToDay(v.ValidUntil).Sub(truncateToDay(now)).Hours() / 24)
	if remaining < 0 {
		return 0
	}

	return remaining
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

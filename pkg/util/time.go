package util

import (
	"errors"
	"time"
)

var dateFormats = []string{
	"2006-01-02",
	"02.01.2006",
}

// ParseDate accepts either an ISO date or the day.month.year form the
// upstream sites use, and returns the date pinned to midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	for _, format := range dateFormats {
		if parsed, err := time.ParseInLocation(format, value, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, errors.New("date must be YYYY-MM-DD or DD.MM.YYYY")
}

// FormatSiteDate renders a date the way the upstream search forms expect it.
func FormatSiteDate(date time.Time) string {
	return date.Format("02.01.2006")
}

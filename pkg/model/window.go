package model

import (
	"sync"
	"time"
)

// TimezoneName is the wall-clock frame every upstream source publishes
// in. All window maths happens in this zone.
const TimezoneName = "Europe/Bucharest"

// The current filter keeps a tight hour behind now; the enrichment
// sweep looks further back so a delayed train already past its
// scheduled call still gets a live refresh.
const (
	DefaultWindowBefore = time.Hour
	DefaultWindowAfter  = 3 * time.Hour

	EnrichmentWindowBefore = 90 * time.Minute
	EnrichmentWindowAfter  = 3 * time.Hour
)

var (
	timezoneOnce sync.Once
	timezone     *time.Location
)

// Timezone returns the fixed upstream timezone. The binary imports
// time/tzdata, so loading cannot fail outside of a broken build.
func Timezone() *time.Location {
	timezoneOnce.Do(func() {
		loc, err := time.LoadLocation(TimezoneName)
		if err != nil {
			loc = time.FixedZone("EET", 2*60*60)
		}
		timezone = loc
	})

	return timezone
}

// Window is the "current" viewing interval around a reference instant.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds [now-before, now+after] in now's own location, so
// zoned instants are only ever compared against zoned bounds.
func NewWindow(now time.Time, before time.Duration, after time.Duration) Window {
	return Window{
		Start: now.Add(-before),
		End:   now.Add(after),
	}
}

// Contains reports whether t, raw or shifted by the delay, falls inside
// the window. A scheduled time in the past still counts while the
// delay-adjusted time is current.
func (w Window) Contains(t time.Time, delayMinutes int) bool {
	if delayMinutes == DelayCancelled {
		delayMinutes = 0
	}

	if !t.Before(w.Start) && !t.After(w.End) {
		return true
	}

	adjusted := t.Add(time.Duration(delayMinutes) * time.Minute)

	return !adjusted.Before(w.Start) && !adjusted.After(w.End)
}

// ContainsRow checks a board row's arrival then departure timestamps.
func (w Window) ContainsRow(row BoardRow) bool {
	if row.ArrivalAt != nil && w.Contains(*row.ArrivalAt, row.DelayMinutes) {
		return true
	}
	if row.DepartureAt != nil && w.Contains(*row.DepartureAt, row.DelayMinutes) {
		return true
	}

	return false
}

// FilterCurrent keeps only board rows relevant to the window.
func FilterCurrent(rows []BoardRow, window Window) []BoardRow {
	var current []BoardRow

	for _, row := range rows {
		if window.ContainsRow(row) {
			current = append(current, row)
		}
	}

	return current
}

// PinClock attaches a scraped wall-clock "HH:MM" to serviceDay in the
// fixed timezone. Both sides of any later comparison are then zoned
// values built from the same instant, never a mix of zoned and floating
// representations. Around the dataset's day boundary the clock rolls to
// the neighbouring day: a small-hours time seen late in the evening is
// tomorrow's, a late-evening time seen in the small hours is
// yesterday's.
func PinClock(clock string, serviceDay time.Time) *time.Time {
	minutes, err := ClockToMinutes(clock)
	if err != nil {
		return nil
	}

	day := serviceDay.In(Timezone())
	pinned := time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, Timezone())

	// Roll-over only applies when the reference carries a real time of
	// day; future-day lookups anchored at midnight stay on their day.
	if day.Hour() != 0 || day.Minute() != 0 {
		switch {
		case day.Hour() >= 20 && pinned.Hour() < 4:
			pinned = pinned.AddDate(0, 0, 1)
		case day.Hour() < 4 && pinned.Hour() >= 20:
			pinned = pinned.AddDate(0, 0, -1)
		}
	}

	return &pinned
}

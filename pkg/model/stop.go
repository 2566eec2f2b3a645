package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DelayCancelled is the sentinel delay value for a cancelled service.
// Negative delays have no other meaning anywhere in the system.
const DelayCancelled = -999

// Stop is one station occurrence within one train's journey.
type Stop struct {
	StationName string `json:"station_name" groups:"basic,detailed"`
	StationCode string `json:"station_code,omitempty" groups:"basic,detailed"`

	// Wall-clock times as shown by the source, "HH:MM".
	ArrivalTime   string `json:"arrival_time,omitempty" groups:"basic,detailed"`
	DepartureTime string `json:"departure_time,omitempty" groups:"basic,detailed"`

	// Times pinned to a concrete service day, when one is known.
	ArrivalAt   *time.Time `json:"arrival_timestamp,omitempty" groups:"detailed"`
	DepartureAt *time.Time `json:"departure_timestamp,omitempty" groups:"detailed"`

	DelayMinutes int    `json:"delay" groups:"basic,detailed"`
	Platform     string `json:"platform,omitempty" groups:"basic,detailed"`
	DwellMinutes int    `json:"dwell_minutes" groups:"detailed"`

	IsOrigin      bool `json:"is_origin" groups:"basic,detailed"`
	IsDestination bool `json:"is_destination" groups:"basic,detailed"`
	IsStop        bool `json:"is_stop" groups:"basic,detailed"`

	// StopType carries the source's own classification (for the static
	// dataset "C" commercial / "N" passing). Sources disagree with each
	// other here and we deliberately do not reconcile them.
	StopType   string  `json:"stop_type,omitempty" groups:"detailed"`
	DistanceKM float64 `json:"distance_km,omitempty" groups:"detailed"`

	// ReportedDelay is the delay the source explicitly stated for this
	// stop. Nil means the source was silent and the rolling delay is
	// inherited during reconciliation.
	ReportedDelay *int `json:"-"`
}

func (s *Stop) Cancelled() bool {
	return s.DelayMinutes == DelayCancelled
}

// ClockToMinutes parses a "HH:MM" token into minutes since midnight.
func ClockToMinutes(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("clock value %q out of range", clock)
	}

	return hours*60 + minutes, nil
}

// Dwell returns departure minus arrival in minutes, wrapped across
// midnight. Zero when either time is missing or unparseable.
func Dwell(arrival string, departure string) int {
	if arrival == "" || departure == "" || arrival == departure {
		return 0
	}

	arrivalMinutes, err := ClockToMinutes(arrival)
	if err != nil {
		return 0
	}
	departureMinutes, err := ClockToMinutes(departure)
	if err != nil {
		return 0
	}

	dwell := departureMinutes - arrivalMinutes
	if dwell < 0 {
		dwell += 24 * 60
	}

	return dwell
}

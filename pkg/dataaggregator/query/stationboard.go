package query

import (
	"time"

	"github.com/trenvio/trenvio/pkg/model"
)

// StationBoard requests the timetable for one station. Live selects
// the scraped real-time board; otherwise every train's static route is
// scanned for the station code.
type StationBoard struct {
	Station model.Station
	Date    *time.Time
	Live    bool
}

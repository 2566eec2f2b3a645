package model

import (
	"sort"
	"time"

	"github.com/trenvio/trenvio/pkg/util"
)

// BoardRow is one train's occurrence on a station timetable.
type BoardRow struct {
	Category    string `json:"rank" groups:"basic,detailed"`
	TrainID     string `json:"train_id" groups:"basic,detailed"`
	TrainNumber string `json:"train_number" groups:"basic,detailed"`
	Operator    string `json:"operator,omitempty" groups:"basic,detailed"`

	Origin      string `json:"origin,omitempty" groups:"basic,detailed"`
	Destination string `json:"destination,omitempty" groups:"basic,detailed"`

	ArrivalTime   string `json:"arrival_time,omitempty" groups:"basic,detailed"`
	DepartureTime string `json:"departure_time,omitempty" groups:"basic,detailed"`

	ArrivalAt   *time.Time `json:"arrival_timestamp,omitempty" groups:"detailed"`
	DepartureAt *time.Time `json:"departure_timestamp,omitempty" groups:"detailed"`

	DelayMinutes int    `json:"delay" groups:"basic,detailed"`
	Platform     string `json:"platform,omitempty" groups:"basic,detailed"`

	IsOrigin      bool `json:"is_origin" groups:"basic,detailed"`
	IsDestination bool `json:"is_destination" groups:"basic,detailed"`
	IsStop        bool `json:"is_stop" groups:"basic,detailed"`

	DataSource string `json:"data_source" groups:"basic,detailed"`
}

// StationTimetable is one station's board from one source tier.
type StationTimetable struct {
	Station     Station    `json:"station" groups:"basic,detailed"`
	Rows        []BoardRow `json:"trains" groups:"basic,detailed"`
	DataSource  string     `json:"data_source" groups:"basic,detailed"`
	GeneratedAt time.Time  `json:"generated_at" groups:"basic,detailed"`
}

// SortBoard orders rows by departure time, falling back to arrival
// time; rows with neither sort last. Stable, so equal keys keep the
// source order.
func SortBoard(rows []BoardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return boardSortKey(rows[i]) < boardSortKey(rows[j])
	})
}

func boardSortKey(row BoardRow) string {
	if row.DepartureTime != "" {
		return row.DepartureTime
	}
	if row.ArrivalTime != "" {
		return row.ArrivalTime
	}

	return "99:99"
}

// DeparturesOnly keeps rows a passenger could board at this station.
func DeparturesOnly(rows []BoardRow) []BoardRow {
	filtered := make([]BoardRow, len(rows))
	copy(filtered, rows)
	util.InPlaceFilter(&filtered, func(row BoardRow) bool {
		return row.IsOrigin || row.IsStop
	})

	return filtered
}

// ArrivalsOnly keeps rows a passenger could alight from at this station.
func ArrivalsOnly(rows []BoardRow) []BoardRow {
	filtered := make([]BoardRow, len(rows))
	copy(filtered, rows)
	util.InPlaceFilter(&filtered, func(row BoardRow) bool {
		return row.IsDestination || row.IsStop
	})

	return filtered
}

package schedule

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/stations"
)

const SourceName = "Official Government Schedule"

const defaultSuggestionLimit = 20

// Source answers queries from the static government dataset. It is the
// last tier for train and station lookups and the only tier for the
// directory, suggestion and validity queries.
type Source struct {
	Dataset *Dataset
}

func (s Source) GetName() string {
	return SourceName
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(model.TrainSnapshot{}),
		reflect.TypeOf(model.StationTimetable{}),
		reflect.TypeOf([]model.TrainSuggestion{}),
		reflect.TypeOf([]model.Station{}),
		reflect.TypeOf(model.ValiditySpan{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (any, error) {
	switch q := q.(type) {
	case query.Train:
		return s.lookupTrain(q)
	case query.StationBoard:
		return s.lookupStationBoard(q)
	case query.TrainSuggestions:
		return s.lookupSuggestions(q), nil
	case query.StationSearch:
		return s.searchStations(q.Query), nil
	case query.StationList:
		return s.Dataset.Stations(), nil
	case query.Validity:
		validity := s.Dataset.Validity
		return &validity, nil
	}

	return nil, dataaggregator.UnsupportedSourceError
}

func (s Source) lookupTrain(q query.Train) (*model.TrainSnapshot, error) {
	if q.Date != nil && !s.Dataset.IsDateValid(*q.Date) {
		return nil, &dataaggregator.DateOutOfRangeError{
			Date: *q.Date,
			Span: s.Dataset.Validity,
		}
	}

	snapshot := s.Dataset.Snapshot(q.Number, q.CommercialOnly)
	if snapshot == nil {
		return nil, &dataaggregator.NotFoundError{
			Subject:     fmt.Sprintf("train %s", q.Number),
			Suggestions: s.suggestionIDs(q.Number),
		}
	}

	return snapshot, nil
}

// suggestionIDs offers trains sharing the leading digits of a number
// that resolved nowhere.
func (s Source) suggestionIDs(number string) []string {
	clean := model.CleanTrainNumber(number)
	if len(clean) < 2 {
		return nil
	}

	var ids []string
	for _, suggestion := range s.Dataset.Suggest(clean[:2], 5) {
		ids = append(ids, suggestion.TrainNumber)
	}

	return ids
}

func (s Source) lookupStationBoard(q query.StationBoard) (*model.StationTimetable, error) {
	if q.Date != nil && !s.Dataset.IsDateValid(*q.Date) {
		return nil, &dataaggregator.DateOutOfRangeError{
			Date: *q.Date,
			Span: s.Dataset.Validity,
		}
	}

	rows := s.Dataset.StationBoard(q.Station, q.Date)
	if len(rows) == 0 {
		return nil, &dataaggregator.NotFoundError{
			Subject: fmt.Sprintf("station %s", q.Station.Name),
		}
	}

	return &model.StationTimetable{
		Station:     q.Station,
		Rows:        rows,
		DataSource:  SourceName,
		GeneratedAt: time.Now(),
	}, nil
}

func (s Source) lookupSuggestions(q query.TrainSuggestions) []model.TrainSuggestion {
	if q.Date != nil && !s.Dataset.IsDateValid(*q.Date) {
		return []model.TrainSuggestion{}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	return s.Dataset.Suggest(q.Query, limit)
}

func (s Source) searchStations(text string) []model.Station {
	slug := stations.Slugify(text)
	var matched []model.Station

	for _, station := range s.Dataset.Stations() {
		if strings.Contains(station.Slug, slug) {
			matched = append(matched, station)
		}
	}

	return matched
}

// Suggest finds trains whose number or category matches the query,
// exact number matches first.
func (d *Dataset) Suggest(q string, limit int) []model.TrainSuggestion {
	digits := model.CleanTrainNumber(q)
	category := categoryKey(model.TrainCategory(q))

	var exact, partial []model.TrainSuggestion

	for _, train := range d.trainList {
		if digits == "" || !strings.Contains(train.Number, digits) {
			continue
		}
		if category != "" && categoryKey(train.Category) != category {
			continue
		}

		suggestion := model.TrainSuggestion{
			TrainNumber: strings.TrimSpace(fmt.Sprintf("%s %s", train.Category, train.Number)),
			Category:    train.Category,
			Relevance:   "partial",
		}

		if train.Number == digits {
			suggestion.Relevance = "exact"
			exact = append(exact, suggestion)
		} else {
			partial = append(partial, suggestion)
		}
	}

	suggestions := append(exact, partial...)
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return suggestions
}

// categoryKey folds hyphenated category spellings, so "IRN" finds
// trains categorised "IR-N".
func categoryKey(category string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(category)) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// StationBoard collects every scheduled call at a station.
func (d *Dataset) StationBoard(station model.Station, date *time.Time) []model.BoardRow {
	var rows []model.BoardRow

	for _, train := range d.trainList {
		stops := train.Stops(false)
		call, found := stationCall(stops, station)
		if !found {
			continue
		}

		row := model.BoardRow{
			Category:      train.Category,
			TrainID:       strings.TrimSpace(fmt.Sprintf("%s %s", train.Category, train.Number)),
			TrainNumber:   train.Number,
			Operator:      train.Operator,
			Origin:        stops[0].StationName,
			Destination:   stops[len(stops)-1].StationName,
			ArrivalTime:   stops[call].ArrivalTime,
			DepartureTime: stops[call].DepartureTime,
			IsOrigin:      call == 0,
			IsDestination: call == len(stops)-1 || stops[call].DepartureTime == "",
			DataSource:    SourceName,
		}
		row.IsStop = !row.IsOrigin && !row.IsDestination && stops[call].StopType == "C"

		if date != nil {
			row.ArrivalAt = model.PinClock(row.ArrivalTime, *date)
			row.DepartureAt = model.PinClock(row.DepartureTime, *date)
		}

		rows = append(rows, row)
	}

	model.SortBoard(rows)

	return rows
}

// stationCall locates the station on a route, preferring a later
// occurrence with no onward departure when a looping route calls twice.
func stationCall(stops []model.Stop, station model.Station) (int, bool) {
	var indexes []int
	for index, stop := range stops {
		if stations.MatchesStop(station, stop) {
			indexes = append(indexes, index)
		}
	}

	if len(indexes) == 0 {
		return 0, false
	}

	if len(indexes) > 1 {
		last := indexes[len(indexes)-1]
		if stops[last].DepartureTime == "" {
			return last, true
		}
	}

	return indexes[0], true
}

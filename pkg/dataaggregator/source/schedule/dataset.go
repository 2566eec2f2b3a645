package schedule

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/stations"
)

// Train is one schedule entry with its route elements flattened into a
// single ordered list. Multi-section trains carry the sections
// back-to-back in sequence order.
type Train struct {
	Number   string
	Category string
	Operator string
	Rank     string

	Elements []RouteElement
}

// RouteElement is one leg between two consecutive stations.
type RouteElement struct {
	OriginCode      string
	OriginName      string
	DestinationCode string
	DestinationName string

	DepartureClock string
	ArrivalClock   string

	Km       float64
	StopType string
}

// Dataset is the parsed government schedule, indexed for lookups. It is
// immutable after Load; a refresh builds a whole new Dataset.
type Dataset struct {
	Validity model.ValiditySpan

	trains      map[string]*Train
	trainList   []*Train
	stationList []model.Station
}

// Load parses a schedule export and builds the lookup indexes.
func Load(reader io.Reader) (*Dataset, error) {
	rawTrains, validity, err := parseXML(reader)
	if err != nil {
		return nil, err
	}

	dataset := &Dataset{
		Validity: validity,
		trains:   map[string]*Train{},
	}

	stationNames := map[string]string{}

	for _, rawTrain := range rawTrains {
		train := &Train{
			Number:   model.CleanTrainNumber(rawTrain.Number),
			Category: strings.TrimSpace(rawTrain.Category),
			Operator: strings.TrimSpace(rawTrain.Operator),
			Rank:     strings.TrimSpace(rawTrain.Rank),
		}
		if train.Number == "" {
			continue
		}

		for _, route := range rawTrain.Routes {
			for _, element := range route.Elements {
				train.Elements = append(train.Elements, RouteElement{
					OriginCode:      element.OriginCode,
					OriginName:      strings.TrimSpace(element.OriginName),
					DestinationCode: element.DestinationCode,
					DestinationName: strings.TrimSpace(element.DestinationName),
					DepartureClock:  secondsToClock(element.DepartureSec),
					ArrivalClock:    secondsToClock(element.ArrivalSec),
					Km:              parseKm(element.Km),
					StopType:        element.StopType,
				})

				stationNames[element.OriginCode] = strings.TrimSpace(element.OriginName)
				stationNames[element.DestinationCode] = strings.TrimSpace(element.DestinationName)
			}
		}

		if len(train.Elements) == 0 {
			continue
		}

		// First edition of a duplicated number wins.
		if _, exists := dataset.trains[train.Number]; !exists {
			dataset.trains[train.Number] = train
			dataset.trainList = append(dataset.trainList, train)
		}
	}

	for code, name := range stationNames {
		if code == "" || name == "" {
			continue
		}

		dataset.stationList = append(dataset.stationList, model.Station{
			Name: name,
			Code: code,
			Slug: stations.Slugify(name),
		})
	}
	sort.Slice(dataset.stationList, func(a, b int) bool {
		return dataset.stationList[a].Name < dataset.stationList[b].Name
	})
	dataset.stationList = dedupeStations(dataset.stationList)

	log.Info().
		Int("trains", len(dataset.trainList)).
		Int("stations", len(dataset.stationList)).
		Time("validFrom", validity.ValidFrom).
		Time("validUntil", validity.ValidUntil).
		Msg("Loaded schedule dataset")

	return dataset, nil
}

// LoadFile loads a schedule export from disk.
func LoadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule dataset: %w", err)
	}
	defer file.Close()

	return Load(file)
}

func dedupeStations(list []model.Station) []model.Station {
	deduped := list[:0]
	var previous string

	for _, station := range list {
		if station.Name == previous {
			continue
		}

		previous = station.Name
		deduped = append(deduped, station)
	}

	return deduped
}

// Train returns the schedule entry for a clean train number.
func (d *Dataset) Train(number string) *Train {
	return d.trains[model.CleanTrainNumber(number)]
}

// Stations returns every station referenced by any route.
func (d *Dataset) Stations() []model.Station {
	return d.stationList
}

// IsDateValid reports whether the dataset covers the given calendar day.
func (d *Dataset) IsDateValid(date time.Time) bool {
	return d.Validity.IsDateValid(date)
}

// Stops converts a train's route elements into the stop list shape the
// rest of the engine works with. Each element contributes its
// destination station; the very first element additionally contributes
// the origin. When commercialOnly is set, passing points are dropped,
// unless that would drop everything.
func (t *Train) Stops(commercialOnly bool) []model.Stop {
	type occurrence struct {
		index int
		stop  model.Stop
	}

	var ordered []occurrence

	for index, element := range t.Elements {
		if index == 0 {
			ordered = append(ordered, occurrence{
				index: len(ordered),
				stop: model.Stop{
					StationName:   element.OriginName,
					StationCode:   element.OriginCode,
					DepartureTime: element.DepartureClock,
					StopType:      "C",
				},
			})
		}

		departure := ""
		if index < len(t.Elements)-1 {
			departure = t.Elements[index+1].DepartureClock
		}

		ordered = append(ordered, occurrence{
			index: len(ordered),
			stop: model.Stop{
				StationName:   element.DestinationName,
				StationCode:   element.DestinationCode,
				ArrivalTime:   element.ArrivalClock,
				DepartureTime: departure,
				DistanceKM:    element.Km,
				StopType:      element.StopType,
			},
		})
	}

	// A looping route can visit a station twice. Keep the occurrence
	// that looks like the terminus call, i.e. a later one with no
	// onward departure, otherwise the first.
	chosen := map[string]occurrence{}
	for _, entry := range ordered {
		key := entry.stop.StationCode
		existing, seen := chosen[key]
		if !seen {
			chosen[key] = entry
			continue
		}

		if entry.stop.DepartureTime == "" && existing.stop.DepartureTime != "" {
			chosen[key] = entry
		}
	}

	kept := make([]occurrence, 0, len(chosen))
	for _, entry := range chosen {
		kept = append(kept, entry)
	}
	sort.Slice(kept, func(a, b int) bool {
		return kept[a].index < kept[b].index
	})

	stops := make([]model.Stop, 0, len(kept))
	for _, entry := range kept {
		stops = append(stops, entry.stop)
	}

	if commercialOnly {
		commercial := filterCommercial(stops)
		if len(commercial) >= 2 {
			stops = commercial
		}
	}

	return stops
}

func filterCommercial(stops []model.Stop) []model.Stop {
	var commercial []model.Stop

	for index, stop := range stops {
		if stop.StopType == "C" || index == 0 || index == len(stops)-1 {
			commercial = append(commercial, stop)
		}
	}

	return commercial
}

// Snapshot builds the single-branch train view the aggregator serves
// when no live tier could answer.
func (d *Dataset) Snapshot(number string, commercialOnly bool) *model.TrainSnapshot {
	train := d.Train(number)
	if train == nil {
		return nil
	}

	stops := train.Stops(commercialOnly)
	if len(stops) < 2 {
		return nil
	}

	branch := model.Branch{
		Label: fmt.Sprintf("%s → %s", stops[0].StationName, stops[len(stops)-1].StationName),
		Stops: stops,
	}
	branch.MarkEndpoints()
	branch.ReconcileDelays()

	return &model.TrainSnapshot{
		TrainNumber: train.Number,
		Category:    train.Category,
		Operator:    train.Operator,
		Branches:    []model.Branch{branch},
		DataSource:  SourceName,
		FetchedAt:   time.Now(),
	}
}

package stations

import (
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/trenvio/trenvio/pkg/model"
)

// Snapshot is one immutable build of the station directory. Readers
// always see a complete snapshot; a refresh builds a full replacement
// before publishing it.
type Snapshot struct {
	Stations []model.Station
	BuiltAt  time.Time

	bySlug map[string]int
	byCode map[string]int
}

// Directory holds the current snapshot behind a single atomically
// swapped reference.
type Directory struct {
	snapshot atomic.Pointer[Snapshot]
}

func NewDirectory() *Directory {
	directory := &Directory{}
	directory.Replace(nil)

	return directory
}

// Replace builds a fully populated snapshot from stations and swaps it
// in. Stations are annotated with region and importance and sorted by
// importance then name.
func (d *Directory) Replace(stationList []model.Station) {
	stations := make([]model.Station, len(stationList))
	copy(stations, stationList)

	for i := range stations {
		if stations[i].Slug == "" {
			stations[i].Slug = Slugify(stations[i].Name)
		}
		stations[i].Region = model.StationRegion(stations[i].Name)
		stations[i].Importance = model.StationImportance(stations[i].Name)
	}

	sort.SliceStable(stations, func(i, j int) bool {
		if stations[i].Importance != stations[j].Importance {
			return stations[i].Importance < stations[j].Importance
		}
		return stations[i].Name < stations[j].Name
	})

	snapshot := &Snapshot{
		Stations: stations,
		BuiltAt:  time.Now(),
		bySlug:   make(map[string]int, len(stations)),
		byCode:   make(map[string]int, len(stations)),
	}

	for i, station := range stations {
		slug := Slugify(station.Name)
		if _, exists := snapshot.bySlug[slug]; !exists {
			snapshot.bySlug[slug] = i
		}
		if station.Code != "" {
			if _, exists := snapshot.byCode[station.Code]; !exists {
				snapshot.byCode[station.Code] = i
			}
		}
	}

	d.snapshot.Store(snapshot)
}

func (d *Directory) Current() *Snapshot {
	return d.snapshot.Load()
}

func (d *Directory) Stations() []model.Station {
	return d.Current().Stations
}

// ByCode looks a station up by its government dataset code.
func (d *Directory) ByCode(code string) (model.Station, bool) {
	snapshot := d.Current()
	if i, ok := snapshot.byCode[code]; ok {
		return snapshot.Stations[i], true
	}

	return model.Station{}, false
}

func (s *Snapshot) bySlugLookup(slug string) (model.Station, bool) {
	if i, ok := s.bySlug[slug]; ok {
		return s.Stations[i], true
	}

	return model.Station{}, false
}

// MatchesStop reports whether a route stop calls at the station, by
// government code when both sides carry one, otherwise by folded name.
func MatchesStop(station model.Station, stop model.Stop) bool {
	if station.Code != "" && stop.StationCode == station.Code {
		return true
	}

	slug := station.Slug
	if slug == "" {
		slug = Slugify(station.Name)
	}

	return Slugify(stop.StationName) == slug
}

// Search returns stations whose folded name contains the folded query.
func (d *Directory) Search(queryText string) []model.Station {
	folded := Slugify(queryText)
	if folded == "" {
		return nil
	}

	var matches []model.Station
	for _, station := range d.Current().Stations {
		if strings.Contains(Slugify(station.Name), folded) {
			matches = append(matches, station)
		}
	}

	return matches
}

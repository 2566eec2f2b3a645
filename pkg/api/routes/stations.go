package routes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	iso8601 "github.com/senseyeio/duration"
	"github.com/sourcegraph/conc/pool"

	"github.com/trenvio/trenvio/pkg/cache"
	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/dataaggregator/source/schedule"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/stations"
)

// StationDirectory is the shared station snapshot, set during startup.
var StationDirectory *stations.Directory

// board rows in the viewing window get their delay refreshed from the
// live tier through this many parallel train lookups
const enrichmentWorkers = 12

var boardCache *cache.Cache[*model.StationTimetable]

var legacyIDRegex = regexp.MustCompile(`^\d+$`)

func StationsRouter(router fiber.Router) {
	router.Get("/", listStations)
	router.Get("/search", searchStations)
	router.Post("/reload", reloadStations)
	router.Get("/:identifier", getStation)
	router.Get("/:identifier/timetable", getStationTimetable)
}

func listStations(c *fiber.Ctx) error {
	return c.JSON(StationDirectory.Stations())
}

func searchStations(c *fiber.Ctx) error {
	queryText := c.Query("q")
	if queryText == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter q is required",
		})
	}

	return c.JSON(StationDirectory.Search(queryText))
}

// reloadStations rebuilds the directory from the schedule tier without
// a restart.
func reloadStations(c *fiber.Ctx) error {
	result, err := dataaggregator.Lookup[[]model.Station](c.UserContext(), dataaggregator.GlobalAggregator, query.StationList{})
	if err != nil {
		return lookupErrorResponse(c, err)
	}

	StationDirectory.Replace(result.Value)

	return c.JSON(fiber.Map{
		"stations": len(result.Value),
	})
}

func getStation(c *fiber.Ctx) error {
	station := resolveStation(c.Params("identifier"))

	return c.JSON(station)
}

// resolveStation accepts a legacy numeric id, a slug or a display name
// in any diacritic spelling.
func resolveStation(identifier string) model.Station {
	if legacyIDRegex.MatchString(identifier) {
		return StationDirectory.ResolveLegacyID(identifier)
	}

	return StationDirectory.Resolve(identifier)
}

// boardKey keys on the calendar day, so every request for today's
// board within the TTL shares one upstream fetch.
func boardKey(station model.Station, serviceDay time.Time, live bool) string {
	return fmt.Sprintf("%s|%s|%t", station.Code, serviceDay.Format("2006-01-02"), live)
}

func loadBoard(ctx context.Context, key string) (*model.StationTimetable, error) {
	station, serviceDay, live, err := parseBoardKey(key)
	if err != nil {
		return nil, err
	}

	result, err := dataaggregator.Lookup[*model.StationTimetable](ctx, dataaggregator.GlobalAggregator, query.StationBoard{
		Station: station,
		Date:    &serviceDay,
		Live:    live,
	})
	if err != nil {
		return nil, err
	}

	return result.Value, nil
}

func parseBoardKey(key string) (model.Station, time.Time, bool, error) {
	parts := strings.SplitN(key, "|", 3)
	if len(parts) != 3 {
		return model.Station{}, time.Time{}, false, fmt.Errorf("malformed board key %q", key)
	}

	serviceDay, err := time.ParseInLocation("2006-01-02", parts[1], model.Timezone())
	if err != nil {
		return model.Station{}, time.Time{}, false, err
	}

	station, found := StationDirectory.ByCode(parts[0])
	if !found {
		station = StationDirectory.Resolve(parts[0])
	}

	return station, serviceDay, parts[2] == "true", nil
}

func getStationTimetable(c *fiber.Ctx) error {
	station := resolveStation(c.Params("identifier"))

	date, err := dateParam(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	now := time.Now().In(model.Timezone())

	// a dated lookup defaults to the static schedule; an undated one is
	// today's board and defaults to the live site
	serviceDay := now
	live := true
	if date != nil {
		serviceDay = *date
		live = sameDay(*date, now)
	}
	live = c.QueryBool("live", live)

	timetable, err := boardCache.Get(c.UserContext(), boardKey(station, serviceDay, live))
	if err != nil {
		return lookupErrorResponse(c, err)
	}

	rows := make([]model.BoardRow, len(timetable.Rows))
	copy(rows, timetable.Rows)

	window, err := viewingWindow(c, now)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	switch c.Query("filter", "all") {
	case "departures":
		rows = model.DeparturesOnly(rows)
	case "arrivals":
		rows = model.ArrivalsOnly(rows)
	case "current":
		if !live {
			sweep := model.NewWindow(now, model.EnrichmentWindowBefore, model.EnrichmentWindowAfter)
			enrichWithLiveDelays(c.UserContext(), rows, station, sweep)
		}
		rows = model.FilterCurrent(rows, window)
	case "all":
	default:
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter filter should be one of all, departures, arrivals, current",
		})
	}

	response := model.StationTimetable{
		Station:     station,
		Rows:        rows,
		DataSource:  timetable.DataSource,
		GeneratedAt: timetable.GeneratedAt,
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: marshalGroups(c.QueryBool("detailed", false)),
	}, &response)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce StationTimetable",
		})
	}

	return c.JSON(reduced)
}

func sameDay(a time.Time, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// viewingWindow builds the "current" interval, with optional ISO8601
// duration overrides for both edges.
func viewingWindow(c *fiber.Ctx, now time.Time) (model.Window, error) {
	before, err := durationParam(c, "before", model.DefaultWindowBefore)
	if err != nil {
		return model.Window{}, err
	}

	after, err := durationParam(c, "after", model.DefaultWindowAfter)
	if err != nil {
		return model.Window{}, err
	}

	return model.NewWindow(now, before, after), nil
}

func durationParam(c *fiber.Ctx, name string, fallback time.Duration) (time.Duration, error) {
	value := c.Query(name)
	if value == "" {
		return fallback, nil
	}

	parsed, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0, fmt.Errorf("parameter %s should be an ISO8601 duration", name)
	}

	reference := time.Now()

	return parsed.Shift(reference).Sub(reference), nil
}

// enrichWithLiveDelays refreshes the delay of every in-window row from
// the live tier, best effort. A failed lookup leaves the static row
// untouched.
func enrichWithLiveDelays(ctx context.Context, rows []model.BoardRow, station model.Station, window model.Window) {
	workers := pool.New().WithMaxGoroutines(enrichmentWorkers)

	for index := range rows {
		if !window.ContainsRow(rows[index]) {
			continue
		}

		row := &rows[index]
		workers.Go(func() {
			snapshot, err := trainCache.Get(ctx, trainKey(row.TrainNumber, nil, false))
			if err != nil || snapshot.DataSource == schedule.SourceName {
				// the schedule tier has no fresher delay than the board
				return
			}

			if delay, found := stationDelay(snapshot, station); found {
				row.DelayMinutes = delay
				row.DataSource = snapshot.DataSource
			}
		})
	}

	workers.Wait()
}

// stationDelay finds the reconciled delay for one station on a train's
// canonical branch.
func stationDelay(snapshot *model.TrainSnapshot, station model.Station) (int, bool) {
	branch := snapshot.Canonical()
	if branch == nil {
		return 0, false
	}

	for _, stop := range branch.Stops {
		if stations.MatchesStop(station, stop) {
			return stop.DelayMinutes, true
		}
	}

	return 0, false
}

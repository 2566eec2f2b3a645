package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/trenvio/trenvio/pkg/model"
)

// Stops parses the list-group stop units inside a container. Units
// without any time at all are decorative and skipped.
func Stops(container *goquery.Selection) []model.Stop {
	var stops []model.Stop

	container.Find("li.list-group-item").Each(func(_ int, unit *goquery.Selection) {
		stop, usable := stopFromUnit(unit)
		if !usable {
			return
		}

		stops = append(stops, stop)
	})

	for i := range stops {
		first := i == 0
		last := i == len(stops)-1

		if first {
			// A time on the origin unit is a departure even when the
			// unit renders only one cell.
			if stops[i].DepartureTime == "" && stops[i].ArrivalTime != "" {
				stops[i].DepartureTime = stops[i].ArrivalTime
				stops[i].ArrivalTime = ""
			}
		}

		stops[i].DwellMinutes = model.Dwell(stops[i].ArrivalTime, stops[i].DepartureTime)
		stops[i].IsStop = first || last || isCommercialUnit(stops[i])
	}

	return stops
}

func stopFromUnit(unit *goquery.Selection) (model.Stop, bool) {
	stop := model.Stop{
		StationName: stationNameFromUnit(unit),
	}

	times := timesFromUnit(unit)
	switch len(times) {
	case 0:
		return stop, false
	case 1:
		stop.ArrivalTime = times[0]
	default:
		stop.ArrivalTime = times[0]
		stop.DepartureTime = times[1]
	}

	stop.ReportedDelay = DelayFromUnit(unit)
	stop.Platform = PlatformFromText(unit.Text())

	if unit.Find(".not-displayed").Length() > 0 {
		stop.StopType = "N"
	}
	if strings.Contains(strings.ToLower(unit.Text()), "oprire") {
		stop.StopType = "C"
	}

	if stop.StationName == "" {
		return stop, false
	}

	return stop, true
}

// timesFromUnit reads the prominent time cells, falling back to any
// clock tokens in the unit when the site renders them unstyled.
func timesFromUnit(unit *goquery.Selection) []string {
	var times []string

	unit.Find("div.text-1-3rem").Each(func(_ int, cell *goquery.Selection) {
		if match := clockRegex.FindString(cell.Text()); match != "" {
			times = append(times, match)
		}
	})

	if len(times) == 0 {
		times = clockTimes(unit)
	}

	if len(times) > 2 {
		times = times[:2]
	}

	return times
}

func stationNameFromUnit(unit *goquery.Selection) string {
	link := unit.Find(`a[href*='/Statie/']`).First()
	if link.Length() == 0 {
		link = unit.Find("a").First()
	}

	return strings.Join(strings.Fields(link.Text()), " ")
}

// isCommercialUnit decides whether an intermediate station is a real
// stop. The sites mark passing points by hiding their stop badge.
func isCommercialUnit(stop model.Stop) bool {
	if stop.StopType == "C" {
		return true
	}
	if stop.StopType == "N" {
		return false
	}

	return stop.DwellMinutes > 0
}

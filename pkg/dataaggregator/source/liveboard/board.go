package liveboard

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/trenvio/trenvio/pkg/extract"
	"github.com/trenvio/trenvio/pkg/model"
)

// operators the board names in plain text rather than a logo
var knownOperators = []string{
	"CFR Călători",
	"CFR Calatori",
	"Softrans",
	"Regio Calatori",
	"Regio Călători",
	"Astra Trans Carpatic",
	"Transferoviar",
	"Interregional",
}

// sanityHorizon trims rows whose pinned time landed absurdly far from
// the reference after day roll-over.
const sanityHorizon = 20 * time.Hour

// extractBoard parses a station results fragment into board rows.
// Rows without any time are decorative headers and skipped.
func extractBoard(document *goquery.Document, station model.Station, serviceDay time.Time) []model.BoardRow {
	var rows []model.BoardRow

	document.Find("li.list-group-item").Each(func(_ int, unit *goquery.Selection) {
		row, usable := rowFromUnit(unit, station)
		if !usable {
			return
		}

		row.ArrivalAt = model.PinClock(row.ArrivalTime, serviceDay)
		row.DepartureAt = model.PinClock(row.DepartureTime, serviceDay)
		if !withinHorizon(row, serviceDay) {
			return
		}

		row.DataSource = SourceName
		rows = append(rows, row)
	})

	model.SortBoard(rows)

	return rows
}

func rowFromUnit(unit *goquery.Selection, station model.Station) (model.BoardRow, bool) {
	row := model.BoardRow{}

	trainLink := unit.Find(`a[href*='/Tren/']`).First()
	if trainLink.Length() == 0 {
		return row, false
	}

	row.TrainID = strings.Join(strings.Fields(trainLink.Text()), " ")
	row.TrainNumber = model.CleanTrainNumber(row.TrainID)
	row.Category = model.TrainCategory(row.TrainID)
	if row.TrainNumber == "" {
		return row, false
	}

	row.ArrivalTime, row.DepartureTime = rowTimes(unit)
	if row.ArrivalTime == "" && row.DepartureTime == "" {
		return row, false
	}

	// role follows which times the board shows for this station
	row.IsOrigin = row.ArrivalTime == "" && row.DepartureTime != ""
	row.IsDestination = row.DepartureTime == "" && row.ArrivalTime != ""
	row.IsStop = row.ArrivalTime != "" && row.DepartureTime != ""

	assignEndpoints(&row, unit, station)

	if delay := extract.DelayFromUnit(unit); delay != nil {
		row.DelayMinutes = *delay
	}
	row.Platform = extract.PlatformFromText(unit.Text())
	row.Operator = operatorFromUnit(unit)

	return row, true
}

// rowTimes reads the labelled time cells. The board prefixes each time
// with "Sosește la" or "Pleacă la"; when the labels are missing the
// clock tokens outside the delay spans are taken in order.
func rowTimes(unit *goquery.Selection) (string, string) {
	var arrival, departure string

	unit.Find("div").Each(func(_ int, div *goquery.Selection) {
		text := div.Text()
		lower := strings.ToLower(text)

		arrives := strings.Contains(lower, "sosește") || strings.Contains(lower, "soseste")
		departs := strings.Contains(lower, "pleacă") || strings.Contains(lower, "pleaca")
		if arrives == departs {
			// either no label or a container wrapping both cells
			return
		}

		clock := extract.ClocksInText(extract.StripDelaySpans(div))
		if len(clock) == 0 {
			return
		}

		if arrives && arrival == "" {
			arrival = clock[0]
		}
		if departs && departure == "" {
			departure = clock[0]
		}
	})

	if arrival != "" || departure != "" {
		return arrival, departure
	}

	clocks := extract.ClocksInText(extract.StripDelaySpans(unit))
	switch len(clocks) {
	case 0:
		return "", ""
	case 1:
		return "", clocks[0]
	default:
		return clocks[0], clocks[1]
	}
}

// assignEndpoints fills origin/destination from the row's other-station
// link, relative to the station whose board this is.
func assignEndpoints(row *model.BoardRow, unit *goquery.Selection, station model.Station) {
	var others []string

	unit.Find(`a[href*='/Statie/']`).Each(func(_ int, link *goquery.Selection) {
		name := strings.Join(strings.Fields(link.Text()), " ")
		if name != "" {
			others = append(others, name)
		}
	})

	switch {
	case row.IsOrigin:
		row.Origin = station.Name
		if len(others) > 0 {
			row.Destination = others[len(others)-1]
		}
	case row.IsDestination:
		row.Destination = station.Name
		if len(others) > 0 {
			row.Origin = others[0]
		}
	default:
		if len(others) > 0 {
			row.Origin = others[0]
			row.Destination = others[len(others)-1]
		}
	}
}

func operatorFromUnit(unit *goquery.Selection) string {
	if title, exists := unit.Find("img[title]").First().Attr("title"); exists && title != "" {
		return strings.TrimSpace(title)
	}

	text := unit.Text()
	for _, operator := range knownOperators {
		if strings.Contains(text, operator) {
			return operator
		}
	}

	return ""
}

func withinHorizon(row model.BoardRow, serviceDay time.Time) bool {
	// midnight-anchored future-day lookups legitimately span a full day
	if serviceDay.Hour() == 0 && serviceDay.Minute() == 0 {
		return true
	}

	reference := serviceDay
	check := func(t *time.Time) bool {
		if t == nil {
			return true
		}
		difference := t.Sub(reference)
		if difference < 0 {
			difference = -difference
		}
		return difference <= sanityHorizon
	}

	return check(row.ArrivalAt) && check(row.DepartureAt)
}

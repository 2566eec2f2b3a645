package liveboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/extract"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/scrape"
	"github.com/trenvio/trenvio/pkg/stations"
	"github.com/trenvio/trenvio/pkg/util"
)

const SourceName = "Live Departure Board"

const defaultBaseURL = "https://mersultrenurilor.infofer.ro"

var trainFormFields = []string{
	"Date",
	"TrainRunningNumber",
	"SelectedBranchCode",
	"ReCaptcha",
	"ConfirmationKey",
	"__RequestVerificationToken",
}

var stationFormFields = []string{
	"Date",
	"StationName",
	"ReCaptcha",
	"ConfirmationKey",
	"__RequestVerificationToken",
}

// Source scrapes the live departures site. It is the fallback tier for
// train lookups and the primary tier for live station boards.
type Source struct {
	Client  *scrape.Client
	BaseURL string
}

func NewSource(timeout time.Duration) Source {
	return Source{
		Client:  scrape.NewClient(timeout),
		BaseURL: defaultBaseURL,
	}
}

func (s Source) GetName() string {
	return SourceName
}

func (s Source) Supports() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(model.TrainSnapshot{}),
		reflect.TypeOf(model.StationTimetable{}),
	}
}

func (s Source) Lookup(ctx context.Context, q any) (any, error) {
	switch q := q.(type) {
	case query.Train:
		return s.lookupTrain(ctx, q)
	case query.StationBoard:
		if !q.Live {
			// static boards come from the schedule tier
			return nil, dataaggregator.UnsupportedSourceError
		}
		return s.lookupStationBoard(ctx, q)
	}

	return nil, dataaggregator.UnsupportedSourceError
}

func (s Source) lookupTrain(ctx context.Context, q query.Train) (*model.TrainSnapshot, error) {
	number := model.CleanTrainNumber(q.Number)
	pageURL := fmt.Sprintf("%s/ro-RO/Tren/%s", s.BaseURL, url.PathEscape(number))

	page, err := s.Client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, wrapFetchError(err)
	}

	form := scrape.HarvestFields(page, trainFormFields)
	form.Set("TrainRunningNumber", number)
	if q.Date != nil {
		form.Set("Date", util.FormatSiteDate(*q.Date))
	}
	scrape.ForceSearchFlags(form)

	results, err := s.Client.PostResults(ctx, s.BaseURL+"/Trains/TrainsResult", pageURL, form)
	if err != nil {
		return nil, wrapFetchError(err)
	}

	extracted, err := extract.TrainDocument(results)
	if err != nil {
		return nil, &dataaggregator.NotFoundError{
			Subject: fmt.Sprintf("train %s", number),
		}
	}

	return &model.TrainSnapshot{
		TrainNumber: number,
		Category:    model.TrainCategory(q.Number),
		Operator:    extracted.Operator,
		Branches:    extracted.Branches,
		Alerts:      extracted.Alerts,
		DataSource:  SourceName,
		FetchedAt:   time.Now(),
	}, nil
}

// lookupStationBoard walks the station's slug spellings until one page
// yields rows. The site 404s on the wrong capitalisation rather than
// redirecting.
func (s Source) lookupStationBoard(ctx context.Context, q query.StationBoard) (*model.StationTimetable, error) {
	serviceDay := time.Now().In(model.Timezone())
	if q.Date != nil {
		serviceDay = q.Date.In(model.Timezone())
	}

	var lastErr error

	for _, slug := range stations.SlugVariants(q.Station.Name) {
		rows, err := s.fetchBoard(ctx, q.Station, slug, serviceDay)
		if err != nil {
			lastErr = err
			continue
		}
		if len(rows) == 0 {
			lastErr = &dataaggregator.NotFoundError{
				Subject: fmt.Sprintf("station %s", q.Station.Name),
			}
			continue
		}

		return &model.StationTimetable{
			Station:     q.Station,
			Rows:        rows,
			DataSource:  SourceName,
			GeneratedAt: time.Now(),
		}, nil
	}

	if lastErr == nil {
		lastErr = &dataaggregator.NotFoundError{
			Subject: fmt.Sprintf("station %s", q.Station.Name),
		}
	}

	return nil, lastErr
}

func (s Source) fetchBoard(ctx context.Context, station model.Station, slug string, serviceDay time.Time) ([]model.BoardRow, error) {
	pageURL := fmt.Sprintf("%s/ro-RO/Statie/%s", s.BaseURL, url.PathEscape(slug))

	page, err := s.Client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, wrapFetchError(err)
	}

	form := scrape.HarvestFields(page, stationFormFields)
	if form.Get("StationName") == "" {
		form.Set("StationName", station.Name)
	}
	form.Set("Date", util.FormatSiteDate(serviceDay))
	scrape.ForceSearchFlags(form)

	results, err := s.Client.PostResults(ctx, s.BaseURL+"/Stations/StationsResult", pageURL, form)
	if err != nil {
		return nil, wrapFetchError(err)
	}

	return extractBoard(results, station, serviceDay), nil
}

func wrapFetchError(err error) error {
	if errors.Is(err, scrape.ErrRedirectStub) {
		return &dataaggregator.MalformedResponseError{
			Source: SourceName,
			Reason: err.Error(),
		}
	}

	return &dataaggregator.TransientSourceError{
		Source: SourceName,
		Err:    err,
	}
}

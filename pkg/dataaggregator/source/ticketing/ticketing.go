package ticketing

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
	"github.com/trenvio/trenvio/pkg/util"
)

const SourceName = "Ticketing Website"

const defaultBaseURL = "https://bilete.cfrcalatori.ro"

// the hidden inputs the train search form replays
var trainFormFields = []string{
	"Date",
	"TrainRunningNumber",
	"SelectedBranchCode",
	"ReCaptcha",
	"ConfirmationKey",
	"__RequestVerificationToken",
}

// Source scrapes the national ticketing site's train pages. It carries
// the freshest per-stop delay figures of any tier but knows nothing
// about stations, so it only answers train lookups.
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
	}
}

func (s Source) Lookup(ctx context.Context, q any) (any, error) {
	trainQuery, ok := q.(query.Train)
	if !ok {
		return nil, dataaggregator.UnsupportedSourceError
	}

	number := model.CleanTrainNumber(trainQuery.Number)
	pageURL := fmt.Sprintf("%s/ro-RO/Tren/%s", s.BaseURL, url.PathEscape(number))

	page, err := s.Client.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, wrapFetchError(err)
	}

	form := scrape.HarvestFields(page, trainFormFields)
	form.Set("TrainRunningNumber", number)
	if trainQuery.Date != nil {
		form.Set("Date", util.FormatSiteDate(*trainQuery.Date))
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
		Category:    model.TrainCategory(trainQuery.Number),
		Operator:    extracted.Operator,
		Branches:    extracted.Branches,
		Alerts:      extracted.Alerts,
		DataSource:  SourceName,
		FetchedAt:   time.Now(),
	}, nil
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

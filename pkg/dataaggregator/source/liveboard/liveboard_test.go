package liveboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/scrape"
)

const stationPageHTML = `<html><body><form>
  <input name="StationName" value="Ploiești Vest"/>
  <input name="ConfirmationKey" value="ck-9"/>
  <input name="__RequestVerificationToken" value="tok-9"/>
</form></body></html>`

const boardHTML = `<html><body><ul>
  <li class="list-group-item">
    <a href="/ro-RO/Tren/3001">R 3001</a>
    <a href="/ro-RO/Statie/brasov">Brașov</a>
    <div><div>Pleacă la 05:30</div></div>
    <span class="color-green">la timp</span>
    <img title="CFR Călători" src="/logo.png"/>
  </li>
  <li class="list-group-item">
    <a href="/ro-RO/Tren/536">IC 536</a>
    <a href="/ro-RO/Statie/bucuresti-nord">București Nord</a>
    <a href="/ro-RO/Statie/brasov">Brașov</a>
    <div><div>Sosește la 06:50</div><div>Pleacă la 06:52</div></div>
    <span class="color-red">+10 min</span>
    <span>Linia 2</span>
  </li>
  <li class="list-group-item">
    <a href="/ro-RO/Tren/1921">IR 1921</a>
    <a href="/ro-RO/Statie/iasi">Iași</a>
    <div><div>Sosește la 04:20</div></div>
  </li>
  <li class="list-group-item"><p>header row without a train</p></li>
</ul></body></html>`

func boardDocument(t *testing.T) *goquery.Document {
	t.Helper()

	document, err := goquery.NewDocumentFromReader(strings.NewReader(boardHTML))
	require.NoError(t, err)

	return document
}

func ploiesti() model.Station {
	return model.Station{Name: "Ploiești Vest", Code: "ploiesti-vest"}
}

func TestExtractBoardRows(t *testing.T) {
	serviceDay := time.Date(2025, 6, 1, 6, 0, 0, 0, model.Timezone())
	rows := extractBoard(boardDocument(t), ploiesti(), serviceDay)

	require.Len(t, rows, 3)

	assert.Equal(t, "IR 1921", rows[0].TrainID, "arrival-only rows sort by arrival")
	assert.True(t, rows[0].IsDestination)
	assert.Equal(t, "Iași", rows[0].Origin)
	assert.Equal(t, "Ploiești Vest", rows[0].Destination)

	departure := rows[1]
	assert.Equal(t, "R 3001", departure.TrainID)
	assert.Equal(t, "3001", departure.TrainNumber)
	assert.True(t, departure.IsOrigin)
	assert.Equal(t, "05:30", departure.DepartureTime)
	assert.Equal(t, "Ploiești Vest", departure.Origin)
	assert.Equal(t, "Brașov", departure.Destination)
	assert.Equal(t, "CFR Călători", departure.Operator)
	assert.Equal(t, 0, departure.DelayMinutes)

	through := rows[2]
	assert.Equal(t, "IC 536", through.TrainID)
	assert.True(t, through.IsStop)
	assert.Equal(t, "06:50", through.ArrivalTime)
	assert.Equal(t, "06:52", through.DepartureTime)
	assert.Equal(t, "București Nord", through.Origin)
	assert.Equal(t, "Brașov", through.Destination)
	assert.Equal(t, 10, through.DelayMinutes)
	assert.Equal(t, "2", through.Platform)
}

func TestExtractBoardPinsTimestamps(t *testing.T) {
	serviceDay := time.Date(2025, 6, 1, 6, 0, 0, 0, model.Timezone())
	rows := extractBoard(boardDocument(t), ploiesti(), serviceDay)

	for _, row := range rows {
		if row.DepartureTime != "" {
			require.NotNil(t, row.DepartureAt)
			assert.Equal(t, model.TimezoneName, row.DepartureAt.Location().String())
		}
	}
}

func TestLookupStationBoardProtocol(t *testing.T) {
	var requestedPages []string

	mux := http.NewServeMux()
	mux.HandleFunc("/ro-RO/Statie/", func(w http.ResponseWriter, r *http.Request) {
		requestedPages = append(requestedPages, r.URL.Path)
		w.Write([]byte(stationPageHTML))
	})
	mux.HandleFunc("/Stations/StationsResult", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "True", r.PostForm.Get("IsSearchWanted"))
		assert.Equal(t, "Ploiești Vest", r.PostForm.Get("StationName"))
		w.Write([]byte(boardHTML))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	source := Source{Client: scrape.NewClient(5 * time.Second), BaseURL: server.URL}

	value, err := source.Lookup(context.Background(), query.StationBoard{
		Station: ploiesti(),
		Live:    true,
	})
	require.NoError(t, err)

	timetable := value.(*model.StationTimetable)
	assert.Equal(t, SourceName, timetable.DataSource)
	assert.Len(t, timetable.Rows, 3)
	require.NotEmpty(t, requestedPages)
	assert.Equal(t, "/ro-RO/Statie/Ploiesti-Vest", requestedPages[0])
}

func TestLookupStationBoardTriesSlugVariants(t *testing.T) {
	var requestedPages []string

	mux := http.NewServeMux()
	mux.HandleFunc("/ro-RO/Statie/", func(w http.ResponseWriter, r *http.Request) {
		requestedPages = append(requestedPages, r.URL.Path)
		if r.URL.Path != "/ro-RO/Statie/ploiesti-vest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(stationPageHTML))
	})
	mux.HandleFunc("/Stations/StationsResult", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(boardHTML))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	source := Source{Client: scrape.NewClient(5 * time.Second), BaseURL: server.URL}

	_, err := source.Lookup(context.Background(), query.StationBoard{
		Station: ploiesti(),
		Live:    true,
	})
	require.NoError(t, err)
	assert.Greater(t, len(requestedPages), 1)
}

func TestLookupNonLiveBoardIsUnsupported(t *testing.T) {
	source := NewSource(time.Second)

	_, err := source.Lookup(context.Background(), query.StationBoard{Station: ploiesti()})
	assert.ErrorIs(t, err, dataaggregator.UnsupportedSourceError)
}

func TestLookupTrainRedirectStub(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ro-RO/Tren/536", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(stationPageHTML))
	})
	mux.HandleFunc("/Trains/TrainsResult", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<script>window.location = "/";</script>`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	source := Source{Client: scrape.NewClient(5 * time.Second), BaseURL: server.URL}

	_, err := source.Lookup(context.Background(), query.Train{Number: "536"})

	var malformed *dataaggregator.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestWithinHorizonSkipsMidnightAnchor(t *testing.T) {
	serviceDay := time.Date(2025, 6, 2, 0, 0, 0, 0, model.Timezone())
	late := time.Date(2025, 6, 2, 23, 30, 0, 0, model.Timezone())

	assert.True(t, withinHorizon(model.BoardRow{DepartureAt: &late}, serviceDay))
}

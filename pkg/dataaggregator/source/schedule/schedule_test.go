package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/model"
)

const fixtureXML = `<?xml version="1.0"?>
<XmlIf>
  <XmlMts>
    <Mt MtValabilDeLa="20241215" MtValabilPinaLa="20251213" DataExport="20250101">
      <Trenuri>
        <Tren Numar="536" CategorieTren="IC" Rang="IC" Operator="CFR Calatori">
          <Trase>
            <Trasa Id="1" Tip="P" CodStatieInitiala="10017" CodStatieFinala="10022">
              <ElementTrasa Secventa="1" CodStaOrigine="10017" DenStaOrigine="Bucuresti Nord" CodStaDest="10555" DenStaDestinatie="Chitila" OraP="21600" OraS="22200" Km="10" TipOprire="N" StationareSecunde="60"/>
              <ElementTrasa Secventa="2" CodStaOrigine="10555" DenStaOrigine="Chitila" CodStaDest="10600" DenStaDestinatie="Ploiesti Vest" OraP="22260" OraS="24600" Km="59" TipOprire="C" StationareSecunde="120"/>
              <ElementTrasa Secventa="3" CodStaOrigine="10600" DenStaOrigine="Ploiesti Vest" CodStaDest="10022" DenStaDestinatie="Brasov" OraP="24720" OraS="31200" Km="166" TipOprire="C" StationareSecunde="0"/>
            </Trasa>
          </Trase>
        </Tren>
        <Tren Numar="3001" CategorieTren="R" Rang="R" Operator="CFR Calatori">
          <Trase>
            <Trasa Id="2" Tip="P" CodStatieInitiala="10600" CodStatieFinala="10022">
              <ElementTrasa Secventa="1" CodStaOrigine="10600" DenStaOrigine="Ploiesti Vest" CodStaDest="10022" DenStaDestinatie="Brasov" OraP="19800" OraS="27000" Km="107" TipOprire="C" StationareSecunde="0"/>
            </Trasa>
          </Trase>
        </Tren>
        <Tren Numar="99536" CategorieTren="R" Rang="R" Operator="CFR Calatori">
          <Trase>
            <Trasa Id="3" Tip="P" CodStatieInitiala="10017" CodStatieFinala="10555">
              <ElementTrasa Secventa="1" CodStaOrigine="10017" DenStaOrigine="Bucuresti Nord" CodStaDest="10555" DenStaDestinatie="Chitila" OraP="30000" OraS="30600" Km="10" TipOprire="C" StationareSecunde="0"/>
            </Trasa>
          </Trase>
        </Tren>
      </Trenuri>
    </Mt>
  </XmlMts>
</XmlIf>`

func loadFixture(t *testing.T) *Dataset {
	t.Helper()

	dataset, err := Load(strings.NewReader(fixtureXML))
	require.NoError(t, err)

	return dataset
}

func TestLoadParsesTrainsNestedInMetadata(t *testing.T) {
	dataset := loadFixture(t)

	assert.Len(t, dataset.trainList, 3)
	require.NotNil(t, dataset.Train("536"))
	assert.NotEmpty(t, dataset.Stations())
}

func TestLoadValidity(t *testing.T) {
	dataset := loadFixture(t)

	assert.Equal(t, 2024, dataset.Validity.ValidFrom.Year())
	assert.Equal(t, time.December, dataset.Validity.ValidFrom.Month())
	assert.Equal(t, 13, dataset.Validity.ValidUntil.Day())

	assert.True(t, dataset.IsDateValid(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, dataset.IsDateValid(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestTrainStops(t *testing.T) {
	dataset := loadFixture(t)

	train := dataset.Train("IC 536")
	require.NotNil(t, train)

	stops := train.Stops(false)
	require.Len(t, stops, 4)

	assert.Equal(t, "Bucuresti Nord", stops[0].StationName)
	assert.Equal(t, "06:00", stops[0].DepartureTime)
	assert.Empty(t, stops[0].ArrivalTime)

	assert.Equal(t, "Chitila", stops[1].StationName)
	assert.Equal(t, "06:10", stops[1].ArrivalTime)
	assert.Equal(t, "06:11", stops[1].DepartureTime)

	assert.Equal(t, "Brasov", stops[3].StationName)
	assert.Equal(t, "08:40", stops[3].ArrivalTime)
	assert.Empty(t, stops[3].DepartureTime)
}

func TestTrainStopsCommercialOnly(t *testing.T) {
	dataset := loadFixture(t)

	stops := dataset.Train("536").Stops(true)
	require.Len(t, stops, 3)

	for _, stop := range stops {
		assert.NotEqual(t, "Chitila", stop.StationName)
	}
}

func TestSnapshotEndpoints(t *testing.T) {
	dataset := loadFixture(t)

	snapshot := dataset.Snapshot("536", false)
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Branches, 1)

	stops := snapshot.Branches[0].Stops
	assert.True(t, stops[0].IsOrigin)
	assert.True(t, stops[len(stops)-1].IsDestination)
	assert.Equal(t, SourceName, snapshot.DataSource)
}

func TestStationBoardOrderAndRoles(t *testing.T) {
	dataset := loadFixture(t)

	rows := dataset.StationBoard(model.Station{Name: "Ploiești Vest", Slug: "ploiesti-vest"}, nil)
	require.Len(t, rows, 2)

	assert.Equal(t, "R 3001", rows[0].TrainID)
	assert.True(t, rows[0].IsOrigin)
	assert.Equal(t, "05:30", rows[0].DepartureTime)

	assert.Equal(t, "IC 536", rows[1].TrainID)
	assert.True(t, rows[1].IsStop)
	assert.Equal(t, "06:50", rows[1].ArrivalTime)
	assert.Equal(t, "06:52", rows[1].DepartureTime)
}

func TestStationBoardByGovernmentCode(t *testing.T) {
	dataset := loadFixture(t)

	rows := dataset.StationBoard(model.Station{Name: "Ploiesti Vest", Code: "10600"}, nil)
	require.Len(t, rows, 2)
}

func TestStationBoardPinsTimestamps(t *testing.T) {
	dataset := loadFixture(t)

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, model.Timezone())
	rows := dataset.StationBoard(model.Station{Name: "Ploiești Vest", Slug: "ploiesti-vest"}, &date)

	require.NotNil(t, rows[0].DepartureAt)
	assert.Equal(t, 5, rows[0].DepartureAt.Hour())
	assert.Equal(t, 30, rows[0].DepartureAt.Minute())
}

func TestSuggestRanksExactFirst(t *testing.T) {
	dataset := loadFixture(t)

	suggestions := dataset.Suggest("536", 10)
	require.NotEmpty(t, suggestions)

	assert.Equal(t, "IC 536", suggestions[0].TrainNumber)
	assert.Equal(t, "exact", suggestions[0].Relevance)

	var numbers []string
	for _, suggestion := range suggestions {
		numbers = append(numbers, suggestion.TrainNumber)
	}
	assert.Contains(t, numbers, "R 99536")
}

func TestSuggestCategoryFilter(t *testing.T) {
	dataset := loadFixture(t)

	suggestions := dataset.Suggest("IC 536", 10)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "IC 536", suggestions[0].TrainNumber)
}

func TestSourceDateOutOfRange(t *testing.T) {
	source := Source{Dataset: loadFixture(t)}

	date := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := source.Lookup(context.Background(), query.Train{Number: "536", Date: &date})

	var dateErr *dataaggregator.DateOutOfRangeError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, 2026, dateErr.Date.Year())
}

func TestSourceUnknownTrainCarriesSuggestions(t *testing.T) {
	source := Source{Dataset: loadFixture(t)}

	_, err := source.Lookup(context.Background(), query.Train{Number: "5399"})

	var notFound *dataaggregator.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Suggestions, "IC 536")
}

func TestSourceStationDirectory(t *testing.T) {
	source := Source{Dataset: loadFixture(t)}

	value, err := source.Lookup(context.Background(), query.StationList{})
	require.NoError(t, err)

	list, ok := value.([]model.Station)
	require.True(t, ok)
	assert.Len(t, list, 4)

	assert.Equal(t, "Brasov", list[0].Name)
	assert.Equal(t, "10022", list[0].Code)
	assert.Equal(t, "brasov", list[0].Slug)

	value, err = source.Lookup(context.Background(), query.StationSearch{Query: "Brașov"})
	require.NoError(t, err)
	assert.Len(t, value.([]model.Station), 1)
}

func TestSourceUnsupportedQuery(t *testing.T) {
	source := Source{Dataset: loadFixture(t)}

	_, err := source.Lookup(context.Background(), struct{ Unknown string }{})
	assert.True(t, errors.Is(err, dataaggregator.UnsupportedSourceError))
}

func TestSecondsToClockWraps(t *testing.T) {
	assert.Equal(t, "00:30", secondsToClock("88200"))
	assert.Equal(t, "", secondsToClock(""))
	assert.Equal(t, "", secondsToClock("junk"))
}

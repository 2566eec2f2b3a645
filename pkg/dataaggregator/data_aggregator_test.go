package dataaggregator

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenvio/trenvio/pkg/model"
)

type fakeSource struct {
	name   string
	types  []reflect.Type
	result any
	err    error
	calls  int
}

func (s *fakeSource) GetName() string {
	return s.name
}

func (s *fakeSource) Supports() []reflect.Type {
	return s.types
}

func (s *fakeSource) Lookup(ctx context.Context, query any) (any, error) {
	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	return s.result, nil
}

func snapshotTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeOf(model.TrainSnapshot{})}
}

func TestLookupFirstTierWins(t *testing.T) {
	primary := &fakeSource{
		name:   "primary",
		types:  snapshotTypes(),
		result: &model.TrainSnapshot{TrainNumber: "536", DataSource: "primary"},
	}
	secondary := &fakeSource{
		name:   "secondary",
		types:  snapshotTypes(),
		result: &model.TrainSnapshot{TrainNumber: "536", DataSource: "secondary"},
	}

	aggregator := &Aggregator{}
	aggregator.RegisterSource(primary)
	aggregator.RegisterSource(secondary)

	result, err := Lookup[*model.TrainSnapshot](context.Background(), aggregator, "q")
	require.NoError(t, err)

	assert.Equal(t, "primary", result.Source)
	assert.Equal(t, "primary", result.Value.DataSource)
	assert.Empty(t, result.Attempts)
	assert.Zero(t, secondary.calls)
}

func TestLookupFallsThroughTransientFailure(t *testing.T) {
	primary := &fakeSource{
		name:  "primary",
		types: snapshotTypes(),
		err:   &TransientSourceError{Source: "primary", Err: errors.New("connection refused")},
	}
	secondary := &fakeSource{
		name:   "secondary",
		types:  snapshotTypes(),
		result: &model.TrainSnapshot{TrainNumber: "536", DataSource: "secondary"},
	}

	aggregator := &Aggregator{Sources: []Source{primary, secondary}}

	result, err := Lookup[*model.TrainSnapshot](context.Background(), aggregator, "q")
	require.NoError(t, err)

	assert.Equal(t, "secondary", result.Source)
	require.Len(t, result.Attempts, 1)
	assert.Equal(t, TierAttempt{Source: "primary", Outcome: "transient-failure"}, result.Attempts[0])
}

func TestLookupSkipsNonSupportingSources(t *testing.T) {
	boardOnly := &fakeSource{
		name:  "board-only",
		types: []reflect.Type{reflect.TypeOf(model.StationTimetable{})},
	}
	trains := &fakeSource{
		name:   "trains",
		types:  snapshotTypes(),
		result: &model.TrainSnapshot{TrainNumber: "536"},
	}

	aggregator := &Aggregator{Sources: []Source{boardOnly, trains}}

	result, err := Lookup[*model.TrainSnapshot](context.Background(), aggregator, "q")
	require.NoError(t, err)

	assert.Zero(t, boardOnly.calls)
	assert.Equal(t, "trains", result.Source)
}

func TestLookupDateOutOfRangeIsTerminal(t *testing.T) {
	dateErr := &DateOutOfRangeError{
		Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Span: model.ValiditySpan{},
	}
	primary := &fakeSource{name: "primary", types: snapshotTypes(), err: dateErr}
	secondary := &fakeSource{
		name:   "secondary",
		types:  snapshotTypes(),
		result: &model.TrainSnapshot{TrainNumber: "536"},
	}

	aggregator := &Aggregator{Sources: []Source{primary, secondary}}

	_, err := Lookup[*model.TrainSnapshot](context.Background(), aggregator, "q")

	var surfaced *DateOutOfRangeError
	require.ErrorAs(t, err, &surfaced)
	assert.Zero(t, secondary.calls)
}

func TestLookupExhaustionKeepsSuggestionsAndAttempts(t *testing.T) {
	primary := &fakeSource{
		name:  "primary",
		types: snapshotTypes(),
		err:   &MalformedResponseError{Source: "primary", Reason: "redirect stub"},
	}
	secondary := &fakeSource{
		name:  "secondary",
		types: snapshotTypes(),
		err:   &NotFoundError{Subject: "train 5399", Suggestions: []string{"IC 536"}},
	}

	aggregator := &Aggregator{Sources: []Source{primary, secondary}}

	_, err := Lookup[*model.TrainSnapshot](context.Background(), aggregator, "q")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	assert.Equal(t, []string{"IC 536"}, notFound.Suggestions)
	require.Len(t, notFound.Attempts, 2)
	assert.Equal(t, "malformed-response", notFound.Attempts[0].Outcome)
	assert.Equal(t, "not-found", notFound.Attempts[1].Outcome)
}

func TestLookupCancelledContext(t *testing.T) {
	source := &fakeSource{
		name:   "primary",
		types:  snapshotTypes(),
		result: &model.TrainSnapshot{TrainNumber: "536"},
	}
	aggregator := &Aggregator{Sources: []Source{source}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Lookup[*model.TrainSnapshot](ctx, aggregator, "q")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Len(t, notFound.Attempts, 1)
	assert.Equal(t, "deadline-exceeded", notFound.Attempts[0].Outcome)
	assert.Zero(t, source.calls)
}

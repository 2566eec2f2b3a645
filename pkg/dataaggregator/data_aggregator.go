package dataaggregator

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"
)

// Aggregator walks an ordered list of source tiers until one yields
// usable data. Tier failures are recorded and swallowed here; only the
// final outcome is visible to the caller.
type Aggregator struct {
	Sources []Source
}

var GlobalAggregator *Aggregator

func (a *Aggregator) RegisterSource(source Source) {
	a.Sources = append(a.Sources, source)

	log.Debug().Str("name", source.GetName()).Msg("Registering new Data Source")
}

// TierAttempt records why one tier did not produce the answer, making
// "which tier answered, and why earlier tiers were skipped" an
// inspectable value.
type TierAttempt struct {
	Source  string `json:"source"`
	Outcome string `json:"outcome"`
}

// Result carries the value together with its provenance.
type Result[T any] struct {
	Value    T
	Source   string
	Attempts []TierAttempt
}

// Lookup tries each registered source supporting T in priority order.
// ctx bounds the whole chain end to end; it does not reset per tier.
func Lookup[T any](ctx context.Context, a *Aggregator, query any) (*Result[T], error) {
	lookupType := reflect.TypeOf(*new(T))
	if lookupType.Kind() == reflect.Pointer {
		lookupType = lookupType.Elem()
	}

	var attempts []TierAttempt
	var lastNotFound *NotFoundError

	for _, source := range a.Sources {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, TierAttempt{Source: source.GetName(), Outcome: "deadline-exceeded"})
			break
		}

		if !sourceSupports(source, lookupType) {
			continue
		}

		value, err := source.Lookup(ctx, query)
		if err == nil {
			typed, ok := value.(T)
			if !ok {
				attempts = append(attempts, TierAttempt{Source: source.GetName(), Outcome: "malformed-response"})
				continue
			}

			return &Result[T]{
				Value:    typed,
				Source:   source.GetName(),
				Attempts: attempts,
			}, nil
		}

		if errors.Is(err, UnsupportedSourceError) {
			continue
		}

		var dateErr *DateOutOfRangeError
		if errors.As(err, &dateErr) {
			// Terminal: no other tier serves a different date range.
			return nil, dateErr
		}

		attempts = append(attempts, TierAttempt{Source: source.GetName(), Outcome: classifyOutcome(err)})

		log.Warn().
			Err(err).
			Str("source", source.GetName()).
			Msg("Data source failed, advancing to next tier")

		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			lastNotFound = notFound
		}
	}

	if lastNotFound != nil {
		lastNotFound.Attempts = attempts
		return nil, lastNotFound
	}

	return nil, &NotFoundError{
		Subject:  fmt.Sprintf("%v", query),
		Attempts: attempts,
	}
}

func sourceSupports(source Source, lookupType reflect.Type) bool {
	for _, supportedType := range source.Supports() {
		if lookupType == supportedType {
			return true
		}
	}

	return false
}

package dataaggregator

import (
	"errors"
	"fmt"
	"time"

	"github.com/trenvio/trenvio/pkg/model"
)

// UnsupportedSourceError means the source does not answer this query
// type at all. It is a skip, not a failure.
var UnsupportedSourceError = errors.New("source does not support this query")

// TransientSourceError covers network failures, timeouts and non-2xx
// statuses. The next tier is the retry strategy; the fetcher itself
// never retries.
type TransientSourceError struct {
	Source string
	Err    error
}

func (e *TransientSourceError) Error() string {
	return fmt.Sprintf("source %s temporarily unavailable: %s", e.Source, e.Err)
}

func (e *TransientSourceError) Unwrap() error {
	return e.Err
}

// MalformedResponseError covers structurally unparseable responses,
// including the anti-automation redirect stub the sites return when a
// search request is rejected.
type MalformedResponseError struct {
	Source string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("source %s returned an unusable response: %s", e.Source, e.Reason)
}

// NotFoundError means a tier answered but the subject is absent there.
// When the whole chain exhausts, the surfaced instance carries the
// per-tier attempt log and any fuzzy suggestions the schedule tier
// produced.
type NotFoundError struct {
	Subject     string
	Suggestions []string
	Attempts    []TierAttempt
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found in any data source", e.Subject)
}

// DateOutOfRangeError means the requested date falls outside the static
// dataset's validity span. It is terminal: no other tier can answer a
// different date range, so fallback stops immediately.
type DateOutOfRangeError struct {
	Date time.Time
	Span model.ValiditySpan
}

func (e *DateOutOfRangeError) Error() string {
	return fmt.Sprintf("date %s is outside the schedule validity period %s to %s",
		e.Date.Format("2006-01-02"),
		e.Span.ValidFrom.Format("2006-01-02"),
		e.Span.ValidUntil.Format("2006-01-02"))
}

func classifyOutcome(err error) string {
	var transient *TransientSourceError
	var malformed *MalformedResponseError
	var notFound *NotFoundError

	switch {
	case errors.As(err, &transient):
		return "transient-failure"
	case errors.As(err, &malformed):
		return "malformed-response"
	case errors.As(err, &notFound):
		return "not-found"
	default:
		return "error"
	}
}

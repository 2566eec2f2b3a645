package dataaggregator

import (
	"context"
	"reflect"
)

// Source is one tier of the fallback chain. A source declares which
// result types it can produce and answers queries for them; queries it
// does not recognise return UnsupportedSourceError so the chain moves
// on without recording a failure.
type Source interface {
	GetName() string
	Supports() []reflect.Type
	Lookup(ctx context.Context, query any) (any, error)
}

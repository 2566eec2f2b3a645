package query

import "time"

// TrainSuggestions asks for fuzzy train matches for a partial or
// misspelled identifier.
type TrainSuggestions struct {
	Query string
	Date  *time.Time
	Limit int
}

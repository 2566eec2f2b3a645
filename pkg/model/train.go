package model

import (
	"regexp"
	"strings"
	"time"
)

// TrainSnapshot is the reconciled view of one train from one source
// tier. Snapshots are per-request artifacts and are never persisted.
type TrainSnapshot struct {
	TrainNumber string `json:"train_number" groups:"basic,detailed"`
	Category    string `json:"category,omitempty" groups:"basic,detailed"`
	Operator    string `json:"operator,omitempty" groups:"basic,detailed"`

	Branches []Branch `json:"branches" groups:"detailed"`
	Alerts   []string `json:"alerts,omitempty" groups:"basic,detailed"`

	DataSource string    `json:"data_source" groups:"basic,detailed"`
	FetchedAt  time.Time `json:"fetched_at" groups:"basic,detailed"`
}

// Canonical returns the branch simple callers should see.
func (t *TrainSnapshot) Canonical() *Branch {
	return CanonicalBranch(t.Branches)
}

// TrainSuggestion is a near-match offered when a train number cannot
// be resolved, drawn from the static schedule.
type TrainSuggestion struct {
	TrainNumber string `json:"train_number" groups:"basic,detailed"`
	Category    string `json:"category,omitempty" groups:"basic,detailed"`
	Relevance   string `json:"relevance" groups:"basic,detailed"`
}

var trainNumberRegex = regexp.MustCompile(`\d+`)

// CleanTrainNumber extracts the bare numeric part of a train
// identifier, accepting forms like "IC 536", "IC536", "R-M 7948".
func CleanTrainNumber(trainID string) string {
	if match := trainNumberRegex.FindString(trainID); match != "" {
		return match
	}

	return strings.ReplaceAll(strings.TrimSpace(trainID), " ", "")
}

// TrainCategory returns whatever surrounds the numeric part,
// e.g. "IC 536" -> "IC".
func TrainCategory(trainID string) string {
	number := CleanTrainNumber(trainID)
	return strings.TrimSpace(strings.Replace(trainID, number, "", 1))
}

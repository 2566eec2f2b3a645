package query

// StationSearch finds stations whose name matches the query text.
type StationSearch struct {
	Query string
}

// StationList requests the full station directory.
type StationList struct{}

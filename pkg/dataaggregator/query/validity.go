package query

// Validity requests the static dataset's validity span.
type Validity struct{}

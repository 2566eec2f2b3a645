package query

import "time"

// Train looks up one train's reconciled snapshot. Date is optional;
// CommercialOnly drops passing points from schedule-derived routes.
type Train struct {
	Number         string
	Date           *time.Time
	CommercialOnly bool
}

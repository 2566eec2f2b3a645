package model

// DelayDistrustThreshold is the rolling delay, in minutes, above which
// an explicit "on time" report for a downstream stop is treated as a
// stale not-yet-updated value rather than a genuine recovery. The value
// is empirical: trains recover small delays between stations but do not
// instantly make up large ones.
var DelayDistrustThreshold = 15

// ReconcileDelays applies rolling delay propagation to a stop sequence,
// in order. An explicit positive delay resets the accumulator; an
// explicit zero is honoured only while the accumulator is at or below
// DelayDistrustThreshold; silence inherits the accumulator. A cancelled
// sentinel passes through untouched.
func ReconcileDelays(stops []Stop) {
	rolling := 0

	for i := range stops {
		stop := &stops[i]

		if stop.ReportedDelay == nil {
			stop.DelayMinutes = rolling
			continue
		}

		reported := *stop.ReportedDelay
		switch {
		case reported > 0:
			rolling = reported
			stop.DelayMinutes = reported
		case reported == 0:
			if rolling > DelayDistrustThreshold {
				stop.DelayMinutes = rolling
			} else {
				rolling = 0
				stop.DelayMinutes = 0
			}
		default:
			stop.DelayMinutes = reported
		}
	}
}

// ReconcileDelays runs delay reconciliation over a single branch.
func (b *Branch) ReconcileDelays() {
	ReconcileDelays(b.Stops)
}

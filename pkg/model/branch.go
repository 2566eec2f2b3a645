package model

// Branch is one physical route variant of a train's published journey.
// Trains may legitimately fork into named alternatives.
type Branch struct {
	Label string `json:"label" groups:"basic,detailed"`
	Stops []Stop `json:"stops" groups:"basic,detailed"`
}

// Valid reports whether the branch carries enough stops to describe a
// journey. A single-station branch is degenerate and rejected.
func (b *Branch) Valid() bool {
	return len(b.Stops) >= 2
}

// MarkEndpoints sets the origin/destination role flags from position.
// The first and last stop of a branch are always commercial stops.
func (b *Branch) MarkEndpoints() {
	if len(b.Stops) == 0 {
		return
	}

	b.Stops[0].IsOrigin = true
	b.Stops[0].IsStop = true
	b.Stops[len(b.Stops)-1].IsDestination = true
	b.Stops[len(b.Stops)-1].IsStop = true
}

// CanonicalBranch selects the branch with the most stops. Ties resolve
// to the earliest branch, so selection is deterministic.
func CanonicalBranch(branches []Branch) *Branch {
	var canonical *Branch

	for i := range branches {
		if canonical == nil || len(branches[i].Stops) > len(canonical.Stops) {
			canonical = &branches[i]
		}
	}

	return canonical
}

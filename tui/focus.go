package tui

// FocusTarget represents which panel receives the navigation keys.
type FocusTarget int

const (
	// FocusSegments moves the cursor through the segment list.
	FocusSegments FocusTarget = iota
	// FocusHistory walks the undo history: up undoes, down redoes.
	FocusHistory
)

// Next cycles focus between the panels.
func (f FocusTarget) Next() FocusTarget {
	if f == FocusSegments {
		return FocusHistory
	}
	return FocusSegments
}

func (f FocusTarget) String() string {
	if f == FocusHistory {
		return "history"
	}
	return "segments"
}

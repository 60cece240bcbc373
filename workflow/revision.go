package workflow

import "errors"

// ErrRevisionBound reports that Advance was called with the revision
// budget already spent. The gate must have chosen force_published
// instead, so hitting this is a logic bug, not a runtime condition.
var ErrRevisionBound = errors.New("workflow: revision bound already reached")

// RevisionController owns the bound on the feedback edge. The gate
// sets the feedback; Advance only moves the counter.
type RevisionController struct {
	MaxRevisions int
}

// Advance increments the revision counter for one more draft cycle.
// Call it only after a rejected decision.
func (c RevisionController) Advance(state State) (State, error) {
	if state.RevisionCount >= c.MaxRevisions {
		return state, ErrRevisionBound
	}
	next := state.RevisionCount + 1
	return state.Apply(Delta{RevisionCount: &next}), nil
}

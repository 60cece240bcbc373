package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverwritesOnlyPresentFields(t *testing.T) {
	state := NewState("go generics", "technical", "")
	draft := "# Title\n\nbody"
	title := "Title"

	next := state.Apply(Delta{Draft: &draft, Title: &title})

	assert.Equal(t, draft, next.Draft)
	assert.Equal(t, title, next.Title)
	assert.Equal(t, "go generics", next.Topic)
	assert.Equal(t, StatusPending, next.Approval)

	// The original value is untouched.
	assert.Empty(t, state.Draft)
}

func TestApplyReplacesFeedbackEntirely(t *testing.T) {
	state := NewState("t", "", "")
	first := []CheckResult{{Name: "word_count", Message: "too short"}}
	second := []CheckResult{{Name: "min_links", Message: "too few links"}}

	state = state.Apply(Delta{Feedback: &first})
	state = state.Apply(Delta{Feedback: &second})

	require.Len(t, state.Feedback, 1)
	assert.Equal(t, "min_links", state.Feedback[0].Name)
}

func TestApplyAppendsErrorsAndWarnings(t *testing.T) {
	state := NewState("t", "", "")

	state = state.Apply(Delta{Errors: []string{"e1"}, Warnings: []string{"w1"}})
	state = state.Apply(Delta{Errors: []string{"e2"}})

	assert.Equal(t, []string{"e1", "e2"}, state.Errors)
	assert.Equal(t, []string{"w1"}, state.Warnings)
}

func TestApplyDoesNotAliasAccumulatedSlices(t *testing.T) {
	state := NewState("t", "", "")
	state = state.Apply(Delta{Errors: []string{"e1"}})

	forked := state.Apply(Delta{Errors: []string{"fork"}})
	state = state.Apply(Delta{Errors: []string{"e2"}})

	assert.Equal(t, []string{"e1", "fork"}, forked.Errors)
	assert.Equal(t, []string{"e1", "e2"}, state.Errors)
}

func TestApplyEmptyDeltaIsIdentity(t *testing.T) {
	state := NewState("topic", "tone", "notes")
	state.RevisionCount = 2
	state.Errors = []string{"e"}

	next := state.Apply(Delta{})

	assert.Equal(t, state, next)
}

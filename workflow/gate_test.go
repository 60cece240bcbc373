package workflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateWithContent(md string, revisions int) State {
	state := NewState("topic", "", "")
	state.Formatted = md
	state.RevisionCount = revisions
	return state
}

func TestEvaluateApprovesWhenAllChecksPass(t *testing.T) {
	th := Thresholds{MinWords: 300, MinLinks: 5, MinSections: 4}
	state := stateWithContent(buildArticle(400, 6, 4), 0)

	d := Evaluate(state, th, 3)

	assert.Equal(t, StatusApproved, d.Status)
	assert.Empty(t, d.Feedback)
	assert.Empty(t, d.ForcedNote)
	require.Len(t, d.Checks, 5)
	for _, c := range d.Checks {
		assert.True(t, c.Passed, c.Name)
	}
}

func TestEvaluateRejectsOnSingleFailure(t *testing.T) {
	// Word count short of threshold, everything else comfortably passing.
	th := Thresholds{MinWords: 3500, MinLinks: 10, MinSections: 4}
	state := stateWithContent(buildArticle(3000, 12, 5), 0)

	d := Evaluate(state, th, 3)

	assert.Equal(t, StatusRejected, d.Status)
	require.Len(t, d.Feedback, 1)
	assert.Equal(t, "word_count", d.Feedback[0].Name)
	assert.Contains(t, d.Feedback[0].Message, "3500")
}

func TestEvaluateEnumeratesEveryFailure(t *testing.T) {
	th := Thresholds{MinWords: 1000, MinLinks: 10, MinSections: 6}
	state := stateWithContent(buildArticle(200, 2, 3), 1)

	d := Evaluate(state, th, 3)

	require.Equal(t, StatusRejected, d.Status)
	names := make([]string, 0, len(d.Feedback))
	for _, c := range d.Feedback {
		names = append(names, c.Name)
	}
	// Fixed check order, all failing checks reported at once.
	assert.Equal(t, []string{"word_count", "min_links", "has_sections"}, names)
}

func TestEvaluateForcePublishesAtRevisionBound(t *testing.T) {
	th := Thresholds{MinWords: 3500, MinLinks: 10, MinSections: 4}
	state := stateWithContent(buildArticle(3000, 12, 5), 3)

	d := Evaluate(state, th, 3)

	assert.Equal(t, StatusForcePublished, d.Status)
	require.NotEmpty(t, d.Feedback)
	assert.NotEmpty(t, d.Warning)
	assert.True(t, strings.Contains(d.ForcedNote, "Publication Override"))
	assert.True(t, strings.Contains(d.ForcedNote, d.Feedback[0].Message))
}

func TestEvaluateApprovalIgnoresRevisionCount(t *testing.T) {
	// A passing article at the bound is approved, never force-published.
	th := Thresholds{MinWords: 300, MinLinks: 5, MinSections: 4}
	state := stateWithContent(buildArticle(400, 6, 4), 3)

	d := Evaluate(state, th, 3)
	assert.Equal(t, StatusApproved, d.Status)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	th := Thresholds{MinWords: 1000, MinLinks: 10, MinSections: 6}
	state := stateWithContent(buildArticle(200, 2, 3), 2)

	first := Evaluate(state, th, 3)
	second := Evaluate(state, th, 3)

	assert.Equal(t, first, second)
}

func TestEvaluateIsIdempotentOnApprovedState(t *testing.T) {
	th := Thresholds{MinWords: 300, MinLinks: 5, MinSections: 4}
	state := stateWithContent(buildArticle(400, 6, 4), 0)

	d := Evaluate(state, th, 3)
	require.Equal(t, StatusApproved, d.Status)

	state = applyDecision(state, d)
	again := Evaluate(state, th, 3)
	assert.Equal(t, StatusApproved, again.Status)
	assert.Empty(t, again.Feedback)
}

func TestEvaluateFallsBackToDraftWhenUnformatted(t *testing.T) {
	th := Thresholds{MinWords: 300, MinLinks: 5, MinSections: 4}
	state := NewState("topic", "", "")
	state.Draft = buildArticle(400, 6, 4)

	d := Evaluate(state, th, 3)
	assert.Equal(t, StatusApproved, d.Status)
}

func TestEvaluateEmptyContentFailsStructure(t *testing.T) {
	th := Thresholds{MinWords: 10, MinLinks: 0, MinSections: 0}
	state := stateWithContent("", 0)

	d := Evaluate(state, th, 3)
	require.Equal(t, StatusRejected, d.Status)

	var structural *CheckResult
	for i := range d.Feedback {
		if d.Feedback[i].Name == "well_structured" {
			structural = &d.Feedback[i]
		}
	}
	require.NotNil(t, structural)
	assert.Contains(t, structural.Message, "empty")
}

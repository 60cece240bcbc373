package workflow

import (
	"fmt"
	"strings"
)

// Thresholds are the configured minimums the gate checks against.
type Thresholds struct {
	MinWords    int
	MinLinks    int
	MinSections int
}

// CheckResult is one quality check outcome. Message is human-readable
// and is what the writer receives as revision feedback.
type CheckResult struct {
	Name      string
	Passed    bool
	Measured  int
	Threshold int
	Message   string
}

// Decision is the gate's three-way classification.
type Decision struct {
	Status     Status
	Checks     []CheckResult
	Feedback   []CheckResult
	ForcedNote string
	Warning    string
}

// Evaluate runs every quality check against the current draft and
// decides between approval, another revision cycle, and forced
// publication. It is pure: identical content, thresholds and revision
// count always produce an identical decision with identical feedback
// ordering. The revision counter is the tiebreaker between rejected
// and force_published; Evaluate never modifies it.
func Evaluate(state State, th Thresholds, maxRevisions int) Decision {
	content := state.Formatted
	if strings.TrimSpace(content) == "" {
		content = state.Draft
	}
	metrics := AnalyzeContent(content)
	checks := runChecks(metrics, th)

	var failing []CheckResult
	for _, c := range checks {
		if !c.Passed {
			failing = append(failing, c)
		}
	}

	if len(failing) == 0 {
		return Decision{Status: StatusApproved, Checks: checks}
	}

	if state.RevisionCount < maxRevisions {
		return Decision{Status: StatusRejected, Checks: checks, Feedback: failing}
	}

	// Revision budget exhausted: publish anyway, with a disclosure note
	// the publish stage prepends to the content.
	return Decision{
		Status:     StatusForcePublished,
		Checks:     checks,
		Feedback:   failing,
		ForcedNote: buildForcedNote(failing, maxRevisions),
		Warning: fmt.Sprintf("published with %d unresolved quality check(s) after %d revisions",
			len(failing), maxRevisions),
	}
}

// runChecks evaluates every check regardless of earlier failures so a
// single revision pass can address all gaps at once. The order is
// fixed; feedback ordering follows it.
func runChecks(m ContentMetrics, th Thresholds) []CheckResult {
	return []CheckResult{
		checkWordCount(m, th),
		checkMinLinks(m, th),
		checkSingleH1(m),
		checkMinSections(m, th),
		checkWellStructured(m),
	}
}

func checkWordCount(m ContentMetrics, th Thresholds) CheckResult {
	return CheckResult{
		Name:      "word_count",
		Passed:    m.WordCount >= th.MinWords,
		Measured:  m.WordCount,
		Threshold: th.MinWords,
		Message:   fmt.Sprintf("word count is %d, minimum is %d", m.WordCount, th.MinWords),
	}
}

func checkMinLinks(m ContentMetrics, th Thresholds) CheckResult {
	return CheckResult{
		Name:      "min_links",
		Passed:    m.LinkCount >= th.MinLinks,
		Measured:  m.LinkCount,
		Threshold: th.MinLinks,
		Message:   fmt.Sprintf("article has %d inline links, minimum is %d", m.LinkCount, th.MinLinks),
	}
}

func checkSingleH1(m ContentMetrics) CheckResult {
	return CheckResult{
		Name:      "has_h1",
		Passed:    m.H1Count == 1,
		Measured:  m.H1Count,
		Threshold: 1,
		Message:   fmt.Sprintf("article has %d top-level headings, expected exactly 1", m.H1Count),
	}
}

func checkMinSections(m ContentMetrics, th Thresholds) CheckResult {
	return CheckResult{
		Name:      "has_sections",
		Passed:    m.H2Count >= th.MinSections,
		Measured:  m.H2Count,
		Threshold: th.MinSections,
		Message:   fmt.Sprintf("article has %d section headings, minimum is %d", m.H2Count, th.MinSections),
	}
}

func checkWellStructured(m ContentMetrics) CheckResult {
	passed := !m.EmptyDocument && m.OrphanedHeadings == 0 && m.ParagraphCount > 0
	msg := "document structure is well formed"
	if m.EmptyDocument {
		msg = "document is empty"
	} else if m.OrphanedHeadings > 0 {
		msg = fmt.Sprintf("document has %d heading(s) with no section content", m.OrphanedHeadings)
	} else if m.ParagraphCount == 0 {
		msg = "document contains no paragraph content"
	}
	return CheckResult{
		Name:      "well_structured",
		Passed:    passed,
		Measured:  m.OrphanedHeadings,
		Threshold: 0,
		Message:   msg,
	}
}

func buildForcedNote(failing []CheckResult, maxRevisions int) string {
	var b strings.Builder
	b.WriteString("**Editor's Note (Publication Override):**\n\n")
	fmt.Fprintf(&b, "This article was published after reaching the maximum revision limit (%d revisions). ", maxRevisions)
	b.WriteString("The automated review still reports the following issues:\n\n")
	for _, c := range failing {
		fmt.Fprintf(&b, "- %s\n", c.Message)
	}
	b.WriteString("\nPlease review and consider further editing in a follow-up post.\n\n---\n\n")
	return b.String()
}

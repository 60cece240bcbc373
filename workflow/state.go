package workflow

import "time"

// Status is the approval state written by the quality gate.
type Status string

const (
	StatusPending        Status = "pending"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
	StatusForcePublished Status = "force_published"
)

// Outcome is the terminal result of a workflow run.
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeFailed    Outcome = "failed"
)

// Research holds the research stage output.
type Research struct {
	Summary string
	Sources []string
}

// Metadata holds the annotator's output for the publish sink.
type Metadata struct {
	Title       string
	Description string
	Excerpt     string
	Tags        []string
	Keywords    []string
}

// State is the single record flowing through the pipeline. It is a
// value type: stages never mutate it, they return a Delta that Apply
// merges into a fresh copy.
type State struct {
	// Inputs, set once at entry.
	Topic        string
	Tone         string
	Instructions string

	// Stage outputs. Each field is owned by exactly one stage.
	Research    Research
	Draft       string
	Title       string
	InlineLinks []string
	Formatted   string
	Meta        Metadata

	// Gate and revision bookkeeping.
	Approval      Status
	Feedback      []CheckResult
	Checks        []CheckResult
	ForcedNote    string
	RevisionCount int

	// Publish results.
	PostID  string
	PostURL string

	// Append-only diagnostics.
	Errors   []string
	Warnings []string

	StartedAt time.Time
}

// NewState builds the entry state for one run.
func NewState(topic, tone, instructions string) State {
	return State{
		Topic:        topic,
		Tone:         tone,
		Instructions: instructions,
		Approval:     StatusPending,
		StartedAt:    time.Now(),
	}
}

// Delta is a typed partial update. Nil fields are carried over
// unchanged; non-nil fields replace the state field entirely. Errors
// and Warnings are the exception: they are concatenated, never
// replaced. Misspelled or unknown fields cannot exist by construction.
type Delta struct {
	Research      *Research
	Draft         *string
	Title         *string
	InlineLinks   *[]string
	Formatted     *string
	Meta          *Metadata
	Approval      *Status
	Feedback      *[]CheckResult
	Checks        *[]CheckResult
	ForcedNote    *string
	RevisionCount *int
	PostID        *string
	PostURL       *string

	Errors   []string
	Warnings []string
}

// Apply merges a Delta into the state and returns the merged copy.
// It is pure and total.
func (s State) Apply(d Delta) State {
	if d.Research != nil {
		s.Research = *d.Research
	}
	if d.Draft != nil {
		s.Draft = *d.Draft
	}
	if d.Title != nil {
		s.Title = *d.Title
	}
	if d.InlineLinks != nil {
		s.InlineLinks = *d.InlineLinks
	}
	if d.Formatted != nil {
		s.Formatted = *d.Formatted
	}
	if d.Meta != nil {
		s.Meta = *d.Meta
	}
	if d.Approval != nil {
		s.Approval = *d.Approval
	}
	if d.Feedback != nil {
		s.Feedback = *d.Feedback
	}
	if d.Checks != nil {
		s.Checks = *d.Checks
	}
	if d.ForcedNote != nil {
		s.ForcedNote = *d.ForcedNote
	}
	if d.RevisionCount != nil {
		s.RevisionCount = *d.RevisionCount
	}
	if d.PostID != nil {
		s.PostID = *d.PostID
	}
	if d.PostURL != nil {
		s.PostURL = *d.PostURL
	}
	if len(d.Errors) > 0 {
		s.Errors = append(append([]string{}, s.Errors...), d.Errors...)
	}
	if len(d.Warnings) > 0 {
		s.Warnings = append(append([]string{}, s.Warnings...), d.Warnings...)
	}
	return s
}

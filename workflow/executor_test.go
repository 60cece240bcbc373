package workflow

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test thresholds kept small so fixture articles stay readable.
var testThresholds = Thresholds{MinWords: 50, MinLinks: 2, MinSections: 2}

func goodArticle() string  { return buildArticle(120, 3, 3) }
func shortArticle() string { return buildArticle(10, 3, 3) }

type fakeResearch struct {
	calls int
	err   error
}

func (f *fakeResearch) Research(_ context.Context, topic string) (Research, error) {
	f.calls++
	if f.err != nil {
		return Research{}, f.err
	}
	return Research{Summary: "notes about " + topic, Sources: []string{"https://example.com/a"}}, nil
}

// scriptWriter returns one scripted markdown per call (initial draft
// first, then revisions) and records what each revision call saw.
type scriptWriter struct {
	outputs    []string
	calls      int
	draftCalls int
	revisions  []int
	feedback   [][]CheckResult
}

func (s *scriptWriter) next() string {
	md := s.outputs[s.calls]
	s.calls++
	return md
}

func (s *scriptWriter) Draft(_ context.Context, _ DraftRequest) (DraftResult, error) {
	s.draftCalls++
	md := s.next()
	return DraftResult{Markdown: md, Title: "Test Article"}, nil
}

func (s *scriptWriter) Revise(_ context.Context, req ReviseRequest) (DraftResult, error) {
	s.revisions = append(s.revisions, req.Revision)
	s.feedback = append(s.feedback, req.Feedback)
	md := s.next()
	return DraftResult{Markdown: md, Title: "Test Article"}, nil
}

type passthroughFormatter struct {
	calls int
	err   error
}

func (f *passthroughFormatter) Format(_ context.Context, md string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return md, nil
}

type fakeAnnotator struct{ err error }

func (f *fakeAnnotator) Annotate(_ context.Context, _, _ string) (Metadata, error) {
	if f.err != nil {
		return Metadata{}, f.err
	}
	return Metadata{Title: "Annotated Title", Excerpt: "excerpt", Tags: []string{"go"}}, nil
}

type fakeSink struct {
	calls    int
	requests []PublishRequest
	err      error
}

func (f *fakeSink) Publish(_ context.Context, req PublishRequest) (PublishResult, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return PublishResult{}, f.err
	}
	return PublishResult{PostID: "p1", URL: "https://blog.example.com/p1", Status: "draft"}, nil
}

type fakeNotifier struct {
	calls int
	last  Notification
	err   error
}

func (f *fakeNotifier) Notify(_ context.Context, n Notification) error {
	f.calls++
	f.last = n
	return f.err
}

type fixture struct {
	research  *fakeResearch
	writer    *scriptWriter
	formatter *passthroughFormatter
	annotator *fakeAnnotator
	sink      *fakeSink
	notifier  *fakeNotifier
	exec      *Executor
}

func newFixture(t *testing.T, outputs []string, maxRevisions int) *fixture {
	t.Helper()
	f := &fixture{
		research:  &fakeResearch{},
		writer:    &scriptWriter{outputs: outputs},
		formatter: &passthroughFormatter{},
		annotator: &fakeAnnotator{},
		sink:      &fakeSink{},
		notifier:  &fakeNotifier{},
	}
	exec, err := NewExecutor(f.research, f.writer, f.formatter, f.annotator, f.sink, f.notifier, Options{
		Thresholds:   testThresholds,
		MaxRevisions: maxRevisions,
		Logger:       log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	f.exec = exec
	return f
}

func TestRunApprovesFirstDraft(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)

	final, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Equal(t, StatusApproved, final.Approval)
	assert.Zero(t, final.RevisionCount)
	assert.Equal(t, 1, f.research.calls)
	assert.Equal(t, 1, f.writer.draftCalls)
	assert.Empty(t, f.writer.revisions)
	assert.Equal(t, 1, f.sink.calls)
	assert.Empty(t, f.sink.requests[0].ForcedNote)
	assert.Equal(t, "https://blog.example.com/p1", final.PostURL)
	assert.Equal(t, 1, f.notifier.calls)
}

func TestRunRevisesThenApproves(t *testing.T) {
	f := newFixture(t, []string{shortArticle(), goodArticle()}, 3)

	final, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Equal(t, StatusApproved, final.Approval)
	assert.Equal(t, 1, final.RevisionCount)
	require.Len(t, f.writer.revisions, 1)
	assert.Equal(t, []int{1}, f.writer.revisions)

	// The revision call saw the gate's failing checks.
	require.Len(t, f.writer.feedback[0], 1)
	assert.Equal(t, "word_count", f.writer.feedback[0][0].Name)
}

func TestRunForcePublishesAfterExhaustingRevisions(t *testing.T) {
	outputs := []string{shortArticle(), shortArticle(), shortArticle(), shortArticle()}
	f := newFixture(t, outputs, 3)

	final, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Equal(t, StatusForcePublished, final.Approval)
	assert.Equal(t, 3, final.RevisionCount)
	assert.Equal(t, []int{1, 2, 3}, f.writer.revisions)

	// Research is not repeated on revision loops.
	assert.Equal(t, 1, f.research.calls)

	// The sink received the disclosure note and a warning is surfaced.
	require.Equal(t, 1, f.sink.calls)
	assert.Contains(t, f.sink.requests[0].ForcedNote, "Publication Override")
	require.NotEmpty(t, final.Warnings)
	assert.Contains(t, final.Warnings[0], "unresolved quality check")
}

func TestRunNoDraftCallAfterApproval(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)

	_, _, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	// One scripted output consumed: the pipeline never re-entered the
	// draft stage after approval.
	assert.Equal(t, 1, f.writer.calls)
}

func TestRunAbortsOnResearchFailure(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)
	f.research.err = errors.New("search unavailable")

	final, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	assert.Equal(t, OutcomeFailed, outcome)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage research")
	assert.Zero(t, f.sink.calls)
	require.NotEmpty(t, final.Errors)
	assert.Contains(t, final.Errors[0], "search unavailable")
}

func TestRunAbortsOnFormatFailure(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)
	f.formatter.err = errors.New("model timeout")

	final, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Contains(t, err.Error(), "stage format")
	assert.Zero(t, f.sink.calls)
	// The last known state still carries the draft for diagnostics.
	assert.NotEmpty(t, final.Draft)
}

func TestRunAbortsOnPublishFailure(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)
	f.sink.err = errors.New("cms rejected the post")

	_, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Contains(t, err.Error(), "stage publish")
	assert.Zero(t, f.notifier.calls)
}

func TestRunNotifierFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)
	f.notifier.err = errors.New("webhook down")

	_, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Equal(t, 1, f.notifier.calls)
}

// blockingResearch never returns until its context expires, standing
// in for a hung external call.
type blockingResearch struct{}

func (blockingResearch) Research(ctx context.Context, _ string) (Research, error) {
	<-ctx.Done()
	return Research{}, ctx.Err()
}

func TestRunStageTimeoutFailsRun(t *testing.T) {
	exec, err := NewExecutor(blockingResearch{}, &scriptWriter{outputs: []string{goodArticle()}},
		&passthroughFormatter{}, &fakeAnnotator{}, &fakeSink{}, nil, Options{
			Thresholds:   testThresholds,
			MaxRevisions: 3,
			StageTimeout: 20 * time.Millisecond,
			Logger:       log.New(io.Discard, "", 0),
		})
	require.NoError(t, err)

	final, outcome, err := exec.Run(context.Background(), NewState("topic", "", ""))

	assert.Equal(t, OutcomeFailed, outcome)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "stage research")
	require.NotEmpty(t, final.Errors)
	assert.Contains(t, final.Errors[0], "deadline")
}

func TestRunHonorsCancellation(t *testing.T) {
	f := newFixture(t, []string{shortArticle(), goodArticle()}, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, outcome, err := f.exec.Run(ctx, NewState("topic", "", ""))

	assert.Equal(t, OutcomeFailed, outcome)
	assert.Error(t, err)
	assert.Zero(t, f.sink.calls)
}

func TestRunZeroMaxRevisionsForcePublishesImmediately(t *testing.T) {
	f := newFixture(t, []string{shortArticle()}, 0)

	final, outcome, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	assert.Equal(t, OutcomePublished, outcome)
	assert.Equal(t, StatusForcePublished, final.Approval)
	assert.Zero(t, final.RevisionCount)
}

func TestNewExecutorRequiresCollaborators(t *testing.T) {
	_, err := NewExecutor(nil, &scriptWriter{}, &passthroughFormatter{}, &fakeAnnotator{}, &fakeSink{}, nil, Options{})
	assert.Error(t, err)
}

func TestRunPrefersAnnotatedTitleForPublish(t *testing.T) {
	f := newFixture(t, []string{goodArticle()}, 3)

	_, _, err := f.exec.Run(context.Background(), NewState("topic", "", ""))

	require.NoError(t, err)
	require.Len(t, f.sink.requests, 1)
	assert.Equal(t, "Annotated Title", f.sink.requests[0].Title)
}

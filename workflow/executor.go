package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Collaborator contracts consumed by the executor. Each call is
// opaque and may fail; transient-failure retries belong to the
// collaborator's own client, never to the executor.

// DraftRequest carries everything the writer needs for a first draft.
type DraftRequest struct {
	Topic        string
	Tone         string
	Instructions string
	Research     Research
}

// ReviseRequest additionally carries the prior draft and the gate's
// failing checks from the last evaluation.
type ReviseRequest struct {
	DraftRequest
	PriorDraft string
	Feedback   []CheckResult
	Revision   int
}

// DraftResult is the writer's output.
type DraftResult struct {
	Markdown    string
	Title       string
	InlineLinks []string
}

// PublishRequest is handed to the publish sink once the gate accepts.
type PublishRequest struct {
	Title       string
	Markdown    string
	Description string
	Excerpt     string
	Tags        []string
	ForcedNote  string
}

// PublishResult reports where the artifact landed.
type PublishResult struct {
	PostID string
	URL    string
	Status string
}

// Notification is the fire-and-forget payload sent after publishing.
type Notification struct {
	PostID  string
	URL     string
	Title   string
	Excerpt string
	Tags    []string
	Content string
}

type ResearchProvider interface {
	Research(ctx context.Context, topic string) (Research, error)
}

// DraftGenerator exposes the initial and revision calls as separate
// methods; the executor picks one based on the revision counter.
type DraftGenerator interface {
	Draft(ctx context.Context, req DraftRequest) (DraftResult, error)
	Revise(ctx context.Context, req ReviseRequest) (DraftResult, error)
}

type ContentFormatter interface {
	Format(ctx context.Context, markdown string) (string, error)
}

type MetadataAnnotator interface {
	Annotate(ctx context.Context, content, instructions string) (Metadata, error)
}

type PublishSink interface {
	Publish(ctx context.Context, req PublishRequest) (PublishResult, error)
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Options configures one executor instance.
type Options struct {
	Thresholds   Thresholds
	MaxRevisions int
	StageTimeout time.Duration
	Verbose      bool
	Logger       *log.Logger
}

// Executor drives the fixed topology: research once, then the
// draft/format/metadata/gate loop until a terminal decision, then
// publish. One conditional edge exists: gate back to draft on
// rejection, bounded by the revision controller.
type Executor struct {
	research  ResearchProvider
	writer    DraftGenerator
	formatter ContentFormatter
	annotator MetadataAnnotator
	sink      PublishSink
	notifier  Notifier

	thresholds   Thresholds
	revisions    RevisionController
	stageTimeout time.Duration
	verbose      bool
	logger       *log.Logger
}

// NewExecutor wires collaborators into an executor. The notifier is
// optional; everything else is required.
func NewExecutor(research ResearchProvider, writer DraftGenerator, formatter ContentFormatter,
	annotator MetadataAnnotator, sink PublishSink, notifier Notifier, opts Options) (*Executor, error) {
	if research == nil || writer == nil || formatter == nil || annotator == nil || sink == nil {
		return nil, errors.New("workflow: all collaborators except the notifier are required")
	}
	if opts.MaxRevisions < 0 {
		return nil, errors.New("workflow: max revisions must not be negative")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		research:     research,
		writer:       writer,
		formatter:    formatter,
		annotator:    annotator,
		sink:         sink,
		notifier:     notifier,
		thresholds:   opts.Thresholds,
		revisions:    RevisionController{MaxRevisions: opts.MaxRevisions},
		stageTimeout: opts.StageTimeout,
		verbose:      opts.Verbose,
		logger:       logger,
	}, nil
}

// Run executes one workflow run to a terminal outcome. On a stage
// failure the last known state is returned for diagnostics alongside
// OutcomeFailed.
func (e *Executor) Run(ctx context.Context, state State) (State, Outcome, error) {
	// Research runs exactly once per run; revision loops reuse it.
	state, err := e.runResearch(ctx, state)
	if err != nil {
		return e.fail(state, "research", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return e.fail(state, "run", err)
		}

		state, err = e.runDraft(ctx, state)
		if err != nil {
			return e.fail(state, "draft", err)
		}
		state, err = e.runFormat(ctx, state)
		if err != nil {
			return e.fail(state, "format", err)
		}
		state, err = e.runMetadata(ctx, state)
		if err != nil {
			return e.fail(state, "metadata", err)
		}

		decision := Evaluate(state, e.thresholds, e.revisions.MaxRevisions)
		state = applyDecision(state, decision)
		e.logger.Printf("[workflow] gate decision=%s failing=%d revision=%d/%d",
			decision.Status, len(decision.Feedback), state.RevisionCount, e.revisions.MaxRevisions)

		switch decision.Status {
		case StatusApproved, StatusForcePublished:
			state, err = e.runPublish(ctx, state)
			if err != nil {
				return e.fail(state, "publish", err)
			}
			e.sendNotification(state)
			return state, OutcomePublished, nil
		case StatusRejected:
			state, err = e.revisions.Advance(state)
			if err != nil {
				// Unreachable when the gate is correct; surface as an
				// internal failure rather than crashing the process.
				return e.fail(state, "revision", err)
			}
		default:
			return e.fail(state, "gate", fmt.Errorf("unexpected gate status %q", decision.Status))
		}
	}
}

func (e *Executor) runResearch(ctx context.Context, state State) (State, error) {
	e.infof("stage research started topic=%q", state.Topic)
	ctx, cancel := e.stageContext(ctx)
	defer cancel()
	research, err := e.research.Research(ctx, state.Topic)
	if err != nil {
		return state, err
	}
	e.infof("stage research completed sources=%d", len(research.Sources))
	return state.Apply(Delta{Research: &research}), nil
}

func (e *Executor) runDraft(ctx context.Context, state State) (State, error) {
	req := DraftRequest{
		Topic:        state.Topic,
		Tone:         state.Tone,
		Instructions: state.Instructions,
		Research:     state.Research,
	}
	ctx, cancel := e.stageContext(ctx)
	defer cancel()

	var result DraftResult
	var err error
	if state.RevisionCount == 0 {
		e.infof("stage draft started (initial)")
		result, err = e.writer.Draft(ctx, req)
	} else {
		e.infof("stage draft started (revision %d, %d feedback items)",
			state.RevisionCount, len(state.Feedback))
		result, err = e.writer.Revise(ctx, ReviseRequest{
			DraftRequest: req,
			PriorDraft:   state.Draft,
			Feedback:     state.Feedback,
			Revision:     state.RevisionCount,
		})
	}
	if err != nil {
		return state, err
	}
	e.infof("stage draft completed title=%q links=%d", result.Title, len(result.InlineLinks))
	return state.Apply(Delta{
		Draft:       &result.Markdown,
		Title:       &result.Title,
		InlineLinks: &result.InlineLinks,
	}), nil
}

func (e *Executor) runFormat(ctx context.Context, state State) (State, error) {
	e.infof("stage format started")
	ctx, cancel := e.stageContext(ctx)
	defer cancel()
	formatted, err := e.formatter.Format(ctx, state.Draft)
	if err != nil {
		return state, err
	}
	e.infof("stage format completed")
	return state.Apply(Delta{Formatted: &formatted}), nil
}

func (e *Executor) runMetadata(ctx context.Context, state State) (State, error) {
	e.infof("stage metadata started")
	ctx, cancel := e.stageContext(ctx)
	defer cancel()
	meta, err := e.annotator.Annotate(ctx, state.Formatted, state.Instructions)
	if err != nil {
		return state, err
	}
	e.infof("stage metadata completed title=%q tags=%d", meta.Title, len(meta.Tags))
	return state.Apply(Delta{Meta: &meta}), nil
}

func (e *Executor) runPublish(ctx context.Context, state State) (State, error) {
	title := state.Meta.Title
	if title == "" {
		title = state.Title
	}
	e.infof("stage publish started title=%q forced=%t", title, state.ForcedNote != "")
	ctx, cancel := e.stageContext(ctx)
	defer cancel()
	result, err := e.sink.Publish(ctx, PublishRequest{
		Title:       title,
		Markdown:    state.Formatted,
		Description: state.Meta.Description,
		Excerpt:     state.Meta.Excerpt,
		Tags:        state.Meta.Tags,
		ForcedNote:  state.ForcedNote,
	})
	if err != nil {
		return state, err
	}
	e.logger.Printf("[workflow] published post_id=%s url=%s status=%s", result.PostID, result.URL, result.Status)
	return state.Apply(Delta{PostID: &result.PostID, PostURL: &result.URL}), nil
}

// sendNotification is fire-and-forget: failures are logged and never
// fail the run.
func (e *Executor) sendNotification(state State) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := e.notifier.Notify(ctx, Notification{
		PostID:  state.PostID,
		URL:     state.PostURL,
		Title:   state.Meta.Title,
		Excerpt: state.Meta.Excerpt,
		Tags:    state.Meta.Tags,
		Content: state.Formatted,
	})
	if err != nil {
		e.logger.Printf("[workflow] notification failed: %v", err)
	}
}

func (e *Executor) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.stageTimeout > 0 {
		return context.WithTimeout(ctx, e.stageTimeout)
	}
	return context.WithCancel(ctx)
}

func (e *Executor) fail(state State, stage string, err error) (State, Outcome, error) {
	wrapped := fmt.Errorf("stage %s: %w", stage, err)
	state = state.Apply(Delta{Errors: []string{wrapped.Error()}})
	e.logger.Printf("[workflow] run failed at stage %s: %v", stage, err)
	return state, OutcomeFailed, wrapped
}

func applyDecision(state State, d Decision) State {
	delta := Delta{
		Approval: &d.Status,
		Feedback: &d.Feedback,
		Checks:   &d.Checks,
	}
	if d.Status == StatusForcePublished {
		delta.ForcedNote = &d.ForcedNote
		delta.Warnings = []string{d.Warning}
	}
	return state.Apply(delta)
}

func (e *Executor) infof(format string, args ...interface{}) {
	if !e.verbose {
		return
	}
	e.logger.Printf("[workflow] "+format, args...)
}

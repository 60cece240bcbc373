package generator

import (
	"context"
	"errors"
	"strings"

	"auto_blog_publisher/workflow"
)

// Writer generates and revises article drafts. The executor decides
// which of the two calls to make; the prompts differ accordingly.
type Writer struct {
	llm  LLMClient
	spec ContentSpec
}

func NewWriter(llm LLMClient, spec ContentSpec) (*Writer, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Writer{llm: llm, spec: spec}, nil
}

// Draft produces the first draft from topic, tone and research.
func (w *Writer) Draft(ctx context.Context, req workflow.DraftRequest) (workflow.DraftResult, error) {
	raw, err := w.llm.Complete(ctx, BuildInitialPrompt(req, w.spec))
	if err != nil {
		return workflow.DraftResult{}, err
	}
	return postProcessDraft(raw)
}

// Revise reworks the prior draft against the gate's failing checks.
func (w *Writer) Revise(ctx context.Context, req workflow.ReviseRequest) (workflow.DraftResult, error) {
	raw, err := w.llm.Complete(ctx, BuildRevisionPrompt(req, w.spec))
	if err != nil {
		return workflow.DraftResult{}, err
	}
	return postProcessDraft(raw)
}

func postProcessDraft(raw string) (workflow.DraftResult, error) {
	md := strings.TrimSpace(raw)
	if md == "" {
		return workflow.DraftResult{}, errors.New("model returned empty markdown")
	}
	return workflow.DraftResult{
		Markdown:    md,
		Title:       extractTitle(md),
		InlineLinks: extractLinks(md),
	}, nil
}

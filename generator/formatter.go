package generator

import (
	"context"
	"errors"
	"strings"
)

// Formatter runs the CMS-normalization pass over a draft.
type Formatter struct {
	llm LLMClient
}

func NewFormatter(llm LLMClient) (*Formatter, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Formatter{llm: llm}, nil
}

func (f *Formatter) Format(ctx context.Context, markdown string) (string, error) {
	raw, err := f.llm.Complete(ctx, BuildFormatterPrompt(markdown))
	if err != nil {
		return "", err
	}
	formatted := strings.TrimSpace(raw)
	if formatted == "" {
		return "", errors.New("model returned empty formatted content")
	}
	return formatted, nil
}

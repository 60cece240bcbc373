package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"auto_blog_publisher/workflow"
)

// Annotator asks the model for publishing metadata and parses the
// JSON it returns. Missing fields fall back to values derived from
// the content so the publish stage always has something usable.
type Annotator struct {
	llm         LLMClient
	defaultTags []string
}

func NewAnnotator(llm LLMClient, defaultTags []string) (*Annotator, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Annotator{llm: llm, defaultTags: defaultTags}, nil
}

func (a *Annotator) Annotate(ctx context.Context, content, instructions string) (workflow.Metadata, error) {
	raw, err := a.llm.Complete(ctx, BuildMetadataPrompt(content, instructions))
	if err != nil {
		return workflow.Metadata{}, err
	}

	payload := stripJSONFence(raw)
	if !gjson.Valid(payload) {
		return workflow.Metadata{}, fmt.Errorf("model returned invalid metadata JSON: %.80s", payload)
	}
	parsed := gjson.Parse(payload)

	meta := workflow.Metadata{
		Title:       strings.TrimSpace(parsed.Get("title").String()),
		Description: strings.TrimSpace(parsed.Get("description").String()),
		Excerpt:     strings.TrimSpace(parsed.Get("excerpt").String()),
		Tags:        stringList(parsed.Get("tags")),
		Keywords:    stringList(parsed.Get("keywords")),
	}

	if meta.Title == "" {
		meta.Title = extractTitle(content)
	}
	if meta.Excerpt == "" {
		meta.Excerpt = defaultDigest(content, 250)
	}
	if len(meta.Tags) == 0 {
		meta.Tags = append([]string{}, a.defaultTags...)
	}
	return meta, nil
}

func stringList(v gjson.Result) []string {
	var out []string
	for _, item := range v.Array() {
		s := strings.TrimSpace(item.String())
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

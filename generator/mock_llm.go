package generator

import (
	"context"
	"fmt"
	"strings"

	"auto_blog_publisher/workflow"
)

// MockLLM is an offline stand-in for local debugging and tests. It
// inspects the system prompt to decide which collaborator is calling
// and produces structurally valid output for each.
type MockLLM struct {
	TargetWords int
	MinLinks    int
	MinSections int
}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	sys := prompt.System
	switch {
	case strings.Contains(sys, "research assistant"):
		return "Key findings: the topic is well covered by the listed sources. Source 1 covers fundamentals, the rest cover applications and trade-offs.", nil
	case strings.Contains(sys, "SEO specialist"):
		return `{"title": "A Mocked Article Title For Local Runs", "description": "A generated meta description used when running the pipeline against the mock model, long enough to look plausible in listings.", "excerpt": "A generated excerpt used when running the pipeline against the mock model.", "tags": ["mock", "pipeline", "blog", "auto-generated", "testing"], "keywords": ["mock article", "pipeline"]}`, nil
	case strings.Contains(sys, "publishing assistant"):
		// Formatter pass: return the article unchanged.
		return prompt.User, nil
	default:
		return m.article(), nil
	}
}

func (m MockLLM) article() string {
	words := m.TargetWords
	if words <= 0 {
		words = 400
	}
	links := m.MinLinks
	if links <= 0 {
		links = 3
	}
	sections := m.MinSections
	if sections <= 0 {
		sections = 3
	}

	var sb strings.Builder
	sb.WriteString("# A Mocked Article Title For Local Runs\n\n")
	sb.WriteString("This introduction was produced by the mock model so the pipeline can run without network access.\n\n")

	perSection := words/sections + 1
	link := 0
	for i := 0; i < sections; i++ {
		fmt.Fprintf(&sb, "## Section %d\n\n", i+1)
		var para strings.Builder
		for w := 0; w < perSection; w++ {
			para.WriteString("filler ")
		}
		if link < links {
			link++
			fmt.Fprintf(&para, "See [reference %d](https://example.com/ref-%d) for details. ", link, link)
		}
		sb.WriteString(strings.TrimSpace(para.String()))
		sb.WriteString("\n\n")
	}
	for link < links {
		link++
		fmt.Fprintf(&sb, "Also see [reference %d](https://example.com/ref-%d).\n\n", link, link)
	}
	sb.WriteString("## Conclusion\n\nThat is all the mock model has to say.\n")
	return sb.String()
}

// MockResearch pairs with MockLLM so the whole pipeline can run
// offline.
type MockResearch struct{}

func (MockResearch) Research(_ context.Context, topic string) (workflow.Research, error) {
	return workflow.Research{
		Summary: fmt.Sprintf("Offline research notes about %q: fundamentals, current practice, and common pitfalls.", topic),
		Sources: []string{
			"https://example.com/ref-1",
			"https://example.com/ref-2",
			"https://example.com/ref-3",
		},
	}, nil
}

package generator

import (
	"fmt"
	"strings"

	"auto_blog_publisher/workflow"
)

// Prompt is the message pair sent to the LLM. Every collaborator call
// is one-shot: system instructions plus a single user message.
type Prompt struct {
	System string
	User   string
}

// ContentSpec is the writer-facing view of the configured content
// targets. Prompts state them explicitly so the model aims at the
// same bar the gate measures.
type ContentSpec struct {
	TargetWords int
	MinLinks    int
	MinSections int
}

// BuildInitialPrompt produces the first-draft prompt from the topic,
// tone, instructions and compiled research.
func BuildInitialPrompt(req workflow.DraftRequest, spec ContentSpec) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a professional technical content writer. Output a complete article in Markdown only, no commentary.\n")
	sb.WriteString("Requirements:\n")
	if spec.TargetWords > 0 {
		fmt.Fprintf(&sb, "- Target length: about %d words.\n", spec.TargetWords)
	}
	if req.Tone != "" {
		fmt.Fprintf(&sb, "- Tone: %s.\n", req.Tone)
	}
	sb.WriteString("- Exactly one top-level heading (#) as the article title.\n")
	if spec.MinSections > 0 {
		fmt.Fprintf(&sb, "- At least %d second-level section headings (##), each with real section content.\n", spec.MinSections)
	}
	if spec.MinLinks > 0 {
		fmt.Fprintf(&sb, "- At least %d inline reference links in [text](url) form, drawn from the research sources.\n", spec.MinLinks)
	}
	sb.WriteString("- Open with an introduction, close with a conclusion.\n")
	if req.Instructions != "" {
		fmt.Fprintf(&sb, "- Custom instructions: %s\n", req.Instructions)
	}

	var ub strings.Builder
	fmt.Fprintf(&ub, "Topic: %s\n\n", req.Topic)
	if req.Research.Summary != "" {
		ub.WriteString("Research findings:\n")
		ub.WriteString(req.Research.Summary)
		ub.WriteString("\n\n")
	}
	if len(req.Research.Sources) > 0 {
		ub.WriteString("Sources to cite:\n")
		for _, src := range req.Research.Sources {
			fmt.Fprintf(&ub, "- %s\n", src)
		}
		ub.WriteString("\n")
	}
	ub.WriteString("Write the complete Markdown article now.")

	return Prompt{System: sb.String(), User: ub.String()}
}

// BuildRevisionPrompt asks for a minimal rework that fixes every
// failing check from the last gate evaluation in one pass.
func BuildRevisionPrompt(req workflow.ReviseRequest, spec ContentSpec) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a professional editor revising an article. Make the minimal changes needed to fix every issue listed, keep the Markdown structure, and output the full revised article only.\n")
	sb.WriteString("- Keep the single top-level heading and the section layout.\n")
	sb.WriteString("- Address every issue; a further revision round is expensive.\n")
	if spec.TargetWords > 0 {
		fmt.Fprintf(&sb, "- Target length: about %d words.\n", spec.TargetWords)
	}
	if req.Instructions != "" {
		fmt.Fprintf(&sb, "- Custom instructions still apply: %s\n", req.Instructions)
	}

	var ub strings.Builder
	fmt.Fprintf(&ub, "Revision attempt %d.\n\nIssues from review:\n", req.Revision)
	for _, c := range req.Feedback {
		fmt.Fprintf(&ub, "- %s\n", c.Message)
	}
	ub.WriteString("\nCurrent article:\n\n")
	ub.WriteString(req.PriorDraft)
	ub.WriteString("\n\nOutput the full revised Markdown article now.")

	return Prompt{System: sb.String(), User: ub.String()}
}

// BuildResearchPrompt compiles raw search results into a research
// summary the writer can draft from.
func BuildResearchPrompt(topic string, results []SearchResult) Prompt {
	var ub strings.Builder
	fmt.Fprintf(&ub, "Topic: %s\n\nSearch results:\n", topic)
	for i, r := range results {
		fmt.Fprintf(&ub, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.URL, r.Description)
	}
	ub.WriteString("\nCompile the research summary now.")

	return Prompt{
		System: "You are a research assistant. Synthesize the search results into a factual research summary for an article writer: key points, notable facts and figures, and which source supports each point. Plain text, no Markdown headings.",
		User:   ub.String(),
	}
}

// BuildFormatterPrompt normalizes a draft for the CMS.
func BuildFormatterPrompt(markdown string) Prompt {
	return Prompt{
		System: "You are a publishing assistant. Clean up the Markdown article for CMS publication: normalize heading levels, fix list and code-block formatting, keep every link, and change no wording. Output the cleaned Markdown only.",
		User:   markdown,
	}
}

// BuildMetadataPrompt extracts publishing metadata as strict JSON.
func BuildMetadataPrompt(content, instructions string) Prompt {
	var ub strings.Builder
	if instructions != "" {
		fmt.Fprintf(&ub, "Instructions for this article: %s\n\n", instructions)
	}
	ub.WriteString("Article:\n\n")
	ub.WriteString(content)

	return Prompt{
		System: `You are an SEO specialist. Return a single JSON object with these keys and nothing else:
{"title": "50-60 char optimized title", "description": "150-160 char meta description", "excerpt": "200-250 char listing excerpt", "tags": ["5-8 tags"], "keywords": ["primary keywords"]}`,
		User: ub.String(),
	}
}

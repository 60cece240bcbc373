package workflow

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ContentMetrics are the measurable signals the quality gate evaluates.
type ContentMetrics struct {
	WordCount        int
	LinkCount        int
	H1Count          int
	H2Count          int
	H3Count          int
	ParagraphCount   int
	OrphanedHeadings int
	EmptyDocument    bool
}

var (
	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
	mdLinkRe  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// AnalyzeContent computes content metrics from markdown. Headings and
// links come from the goldmark AST; the word count is taken on the
// tag-stripped text so link URLs and inline HTML do not inflate it.
func AnalyzeContent(md string) ContentMetrics {
	src := []byte(md)
	m := ContentMetrics{}

	trimmed := strings.TrimSpace(md)
	if trimmed == "" {
		m.EmptyDocument = true
		return m
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			switch node.Level {
			case 1:
				m.H1Count++
			case 2:
				m.H2Count++
			case 3:
				m.H3Count++
			}
		case *ast.Link:
			m.LinkCount++
		case *ast.AutoLink:
			m.LinkCount++
		case *ast.Paragraph:
			m.ParagraphCount++
		}
		return ast.WalkContinue, nil
	})

	m.OrphanedHeadings = countOrphanedHeadings(doc)
	m.WordCount = countWords(md)
	return m
}

// countWords mirrors the analyzer the reviewer originally relied on:
// strip HTML tags, collapse markdown links to their anchor text, split
// on whitespace.
func countWords(md string) int {
	text := htmlTagRe.ReplaceAllString(md, "")
	text = mdLinkRe.ReplaceAllString(text, "$1")
	return len(strings.Fields(text))
}

// countOrphanedHeadings walks the document's top-level blocks and
// counts headings that own no content: a heading directly followed by
// another heading at the same or a shallower level, or a heading that
// closes the document.
func countOrphanedHeadings(doc ast.Node) int {
	orphans := 0
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		h, ok := child.(*ast.Heading)
		if !ok {
			continue
		}
		next := child.NextSibling()
		if next == nil {
			orphans++
			continue
		}
		if nh, ok := next.(*ast.Heading); ok && nh.Level <= h.Level {
			orphans++
		}
	}
	return orphans
}

package generator

import (
	"regexp"
	"strings"
)

var (
	titleRe  = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	linkRe   = regexp.MustCompile(`\[[^\]]+\]\(([^)]+)\)`)
	fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
)

// extractTitle returns the first H1 text, if any.
func extractTitle(md string) string {
	m := titleRe.FindStringSubmatch(md)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// extractLinks returns the inline link URLs in document order.
func extractLinks(md string) []string {
	var urls []string
	for _, m := range linkRe.FindAllStringSubmatch(md, -1) {
		urls = append(urls, strings.TrimSpace(m[1]))
	}
	return urls
}

// stripJSONFence unwraps a fenced code block around a JSON payload.
// Models frequently wrap JSON in ``` despite instructions not to.
func stripJSONFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := fencedRe.FindStringSubmatch(raw); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return raw
}

// defaultDigest squeezes the markdown into a short plain excerpt.
// The cut lands on a rune boundary so multi-byte text survives.
func defaultDigest(md string, limit int) string {
	compact := strings.Fields(md)
	joined := strings.Join(compact, " ")
	if r := []rune(joined); len(r) > limit {
		return string(r[:limit])
	}
	return joined
}

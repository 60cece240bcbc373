package publisher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"auto_blog_publisher/workflow"
)

// saveArtifact writes the final article to the output directory
// before publishing, so the content survives a failed publish call.
func saveArtifact(dir string, req workflow.PublishRequest, md string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("blog_post_%s.md", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "**Meta Description:** %s\n\n", req.Description)
	}
	if len(req.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(req.Tags, ", "))
	}
	b.WriteString("---\n\n")
	b.WriteString(md)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

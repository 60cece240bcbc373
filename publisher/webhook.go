package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"auto_blog_publisher/workflow"
)

// Webhook relays publish notifications to a configured endpoint.
// Delivery is best-effort: callers log failures and move on.
type Webhook struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	PostID         string   `json:"post_id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Excerpt        string   `json:"excerpt"`
	Tags           []string `json:"tags"`
	ContentPreview string   `json:"content_preview"`
}

func NewWebhook(url string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Webhook{url: url, client: client}
}

func (w *Webhook) Notify(ctx context.Context, n workflow.Notification) error {
	preview := n.Content
	if r := []rune(preview); len(r) > 500 {
		preview = string(r[:500])
	}
	body, err := json.Marshal(webhookPayload{
		PostID:         n.PostID,
		URL:            n.URL,
		Title:          n.Title,
		Excerpt:        n.Excerpt,
		Tags:           n.Tags,
		ContentPreview: preview,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

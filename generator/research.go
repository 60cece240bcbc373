package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"auto_blog_publisher/workflow"
)

const defaultSearchURL = "https://api.search.brave.com/res/v1/web/search"

// SearchSettings configures the Brave Search API client.
type SearchSettings struct {
	APIKey  string
	BaseURL string
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title       string
	URL         string
	Description string
}

type braveSearchResp struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// ResearchClient gathers web results for a topic and has the model
// compile them into a research summary.
type ResearchClient struct {
	llm    LLMClient
	client *http.Client
	cfg    SearchSettings
}

func NewResearchClient(llm LLMClient, client *http.Client, cfg SearchSettings) (*ResearchClient, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("search api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSearchURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ResearchClient{llm: llm, client: client, cfg: cfg}, nil
}

func (c *ResearchClient) Research(ctx context.Context, topic string) (workflow.Research, error) {
	results, err := c.search(ctx, topic)
	if err != nil {
		return workflow.Research{}, err
	}
	if len(results) == 0 {
		return workflow.Research{}, fmt.Errorf("no search results for topic %q", topic)
	}

	summary, err := c.llm.Complete(ctx, BuildResearchPrompt(topic, results))
	if err != nil {
		return workflow.Research{}, err
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return workflow.Research{}, errors.New("model returned empty research summary")
	}

	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.URL)
	}
	return workflow.Research{Summary: summary, Sources: sources}, nil
}

func (c *ResearchClient) search(ctx context.Context, query string) ([]SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.cfg.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.cfg.APIKey)
	q := req.URL.Query()
	q.Set("q", query)
	q.Set("count", "10")
	q.Set("search_lang", "en")
	q.Set("safesearch", "moderate")
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var data braveSearchResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(data.Web.Results))
	for _, r := range data.Web.Results {
		results = append(results, SearchResult{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
		})
	}
	return results, nil
}

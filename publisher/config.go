package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"auto_blog_publisher/workflow"
)

// LLMConfig selects and configures the model provider.
type LLMConfig struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// SearchConfig configures the web search collaborator.
type SearchConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
}

// ContentConfig carries the quality targets the gate enforces.
type ContentConfig struct {
	WordCountTarget int `json:"word_count_target"`
	MinInlineLinks  int `json:"min_inline_links"`
	MinSections     int `json:"min_sections"`
	MaxRevisions    int `json:"max_revisions"`
}

// Config is the full runtime configuration, loaded from a JSON file.
type Config struct {
	GhostURL      string `json:"ghost_url"`
	GhostAdminKey string `json:"ghost_admin_key"`

	PublishAsDraft  bool     `json:"publish_as_draft"`
	DefaultTags     []string `json:"default_tags,omitempty"`
	OutputDir       string   `json:"output_dir,omitempty"`
	WebhookURL      string   `json:"webhook_url,omitempty"`
	ServerAddr      string   `json:"server_addr,omitempty"`
	StageTimeoutSec int      `json:"stage_timeout_sec,omitempty"`
	Tone            string   `json:"tone,omitempty"`

	LLM     *LLMConfig    `json:"llm,omitempty"`
	Search  *SearchConfig `json:"search,omitempty"`
	Content ContentConfig `json:"content"`
}

// defaults mirrors the documented configuration defaults; fields
// present in the file override them.
func defaults() Config {
	return Config{
		PublishAsDraft:  true,
		DefaultTags:     []string{"blog", "auto-generated"},
		StageTimeoutSec: 120,
		Content: ContentConfig{
			WordCountTarget: 3500,
			MinInlineLinks:  10,
			MinSections:     4,
			MaxRevisions:    3,
		},
	}
}

// LoadConfig reads JSON config from disk and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := defaults()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once. A failure
// here aborts the process before any run starts.
func (c Config) Validate() error {
	var problems []string

	if c.GhostURL == "" {
		problems = append(problems, "ghost_url is required")
	}
	if c.GhostAdminKey == "" {
		problems = append(problems, "ghost_admin_key is required")
	} else if !strings.Contains(c.GhostAdminKey, ":") {
		problems = append(problems, "ghost_admin_key must be in id:secret form")
	}
	if c.LLM == nil || c.LLM.Provider == "" {
		problems = append(problems, "llm.provider is required")
	} else if c.LLM.Provider != "mock" {
		if c.LLM.APIKey == "" {
			problems = append(problems, "llm.api_key is required")
		}
		if c.LLM.Model == "" {
			problems = append(problems, "llm.model is required")
		}
		if c.Search == nil || c.Search.APIKey == "" {
			problems = append(problems, "search.api_key is required")
		}
	}
	if c.Content.WordCountTarget <= 0 {
		problems = append(problems, "content.word_count_target must be positive")
	}
	if c.Content.MaxRevisions < 0 {
		problems = append(problems, "content.max_revisions must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// GateThresholds derives the gate minimums from the configured
// targets. The word minimum allows 5% under the target so a draft a
// few sentences short does not burn a revision cycle.
func (c Config) GateThresholds() workflow.Thresholds {
	return workflow.Thresholds{
		MinWords:    c.Content.WordCountTarget * 95 / 100,
		MinLinks:    c.Content.MinInlineLinks,
		MinSections: c.Content.MinSections,
	}
}

// StageTimeout returns the per-stage external call timeout.
func (c Config) StageTimeout() time.Duration {
	if c.StageTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.StageTimeoutSec) * time.Second
}

var errAdminKeyFormat = errors.New("ghost admin key must be in id:secret form")

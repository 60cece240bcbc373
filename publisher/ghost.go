package publisher

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yuin/goldmark"

	"auto_blog_publisher/workflow"
)

const adminPostsPath = "/ghost/api/admin/posts/?source=html"

// Ghost rejects excerpts longer than 300 characters.
const maxExcerptLen = 300

type ghostTag struct {
	Name string `json:"name"`
}

type ghostPost struct {
	Title           string     `json:"title"`
	HTML            string     `json:"html"`
	CustomExcerpt   string     `json:"custom_excerpt,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	Tags            []ghostTag `json:"tags,omitempty"`
	Status          string     `json:"status"`
}

type ghostPostPayload struct {
	Posts []ghostPost `json:"posts"`
}

type ghostPostResp struct {
	Posts []struct {
		ID     string `json:"id"`
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"posts"`
	Errors []struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"errors"`
}

// Client publishes finished articles to the Ghost Admin API.
type Client struct {
	cfg     Config
	client  *http.Client
	keyID   string
	secret  []byte
	verbose bool
	logger  *log.Logger
}

// New creates a Client and parses the admin key so a malformed key
// fails at startup rather than on the first publish.
func New(cfg Config, client *http.Client, verbose bool, logger *log.Logger) (*Client, error) {
	if cfg.GhostURL == "" || cfg.GhostAdminKey == "" {
		return nil, errors.New("config must include ghost_url and ghost_admin_key")
	}
	id, secretHex, ok := strings.Cut(cfg.GhostAdminKey, ":")
	if !ok {
		return nil, errAdminKeyFormat
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("ghost admin key secret is not hex: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		cfg:     cfg,
		client:  client,
		keyID:   id,
		secret:  secret,
		verbose: verbose,
		logger:  logger,
	}, nil
}

func (p *Client) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// Publish converts the article to HTML and creates the post. A forced
// disclosure note, when present, is prepended to the content before
// conversion.
func (p *Client) Publish(ctx context.Context, req workflow.PublishRequest) (workflow.PublishResult, error) {
	if req.Title == "" || strings.TrimSpace(req.Markdown) == "" {
		return workflow.PublishResult{}, errors.New("title and content are required")
	}

	md := req.Markdown
	if req.ForcedNote != "" {
		md = req.ForcedNote + md
		p.infof("Prepending publication-override note to content")
	}

	if p.cfg.OutputDir != "" {
		if path, err := saveArtifact(p.cfg.OutputDir, req, md); err != nil {
			p.logger.Printf("[publisher] local save failed: %v", err)
		} else {
			p.infof("Saved local copy: %s", path)
		}
	}

	contentHTML, err := mdToHTML(md)
	if err != nil {
		return workflow.PublishResult{}, err
	}
	p.infof("Converted Markdown to HTML")

	excerpt := req.Excerpt
	if excerpt == "" {
		excerpt = defaultExcerpt(md, 250)
	}
	if r := []rune(excerpt); len(r) > maxExcerptLen {
		excerpt = string(r[:maxExcerptLen-3]) + "..."
	}

	status := "published"
	if p.cfg.PublishAsDraft {
		status = "draft"
	}

	tags := req.Tags
	if len(tags) == 0 {
		tags = p.cfg.DefaultTags
	}
	ghostTags := make([]ghostTag, 0, len(tags))
	for _, t := range tags {
		ghostTags = append(ghostTags, ghostTag{Name: t})
	}

	post := ghostPost{
		Title:           req.Title,
		HTML:            contentHTML,
		CustomExcerpt:   excerpt,
		MetaDescription: req.Description,
		Tags:            ghostTags,
		Status:          status,
	}

	result, err := p.createPost(ctx, post)
	if err != nil {
		return workflow.PublishResult{}, err
	}
	p.infof("Post created: id=%s url=%s status=%s", result.PostID, result.URL, result.Status)
	return result, nil
}

func (p *Client) createPost(ctx context.Context, post ghostPost) (workflow.PublishResult, error) {
	body, err := json.Marshal(ghostPostPayload{Posts: []ghostPost{post}})
	if err != nil {
		return workflow.PublishResult{}, err
	}

	token, err := p.adminToken()
	if err != nil {
		return workflow.PublishResult{}, err
	}

	url := strings.TrimSuffix(p.cfg.GhostURL, "/") + adminPostsPath
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return workflow.PublishResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Ghost "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return workflow.PublishResult{}, err
	}
	defer resp.Body.Close()

	var data ghostPostResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return workflow.PublishResult{}, err
	}
	if len(data.Posts) == 0 {
		msg := "unknown error"
		if len(data.Errors) > 0 {
			msg = data.Errors[0].Message
		}
		return workflow.PublishResult{}, fmt.Errorf("failed to create post: %d %s", resp.StatusCode, msg)
	}

	created := data.Posts[0]
	return workflow.PublishResult{PostID: created.ID, URL: created.URL, Status: created.Status}, nil
}

// adminToken signs the short-lived JWT the Ghost Admin API expects:
// HS256 over the hex-decoded key secret, key id in the header, five
// minute lifetime, audience /admin/.
func (p *Client) adminToken() (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/admin/",
	})
	tok.Header["kid"] = p.keyID
	return tok.SignedString(p.secret)
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// defaultExcerpt truncates on rune boundaries; excerpts carry
// arbitrary article text, not just ASCII.
func defaultExcerpt(md string, limit int) string {
	compact := strings.Fields(md)
	joined := strings.Join(compact, " ")
	if r := []rune(joined); len(r) > limit {
		return string(r[:limit])
	}
	return joined
}

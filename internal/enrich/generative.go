package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/avolkau/librarium/internal/config"
)

const suggestionPrompt = `You are a library cataloguing assistant.
For the book titled %q%s, reply with a single JSON object and nothing else:
{"author": "...", "genre": "...", "description": "...", "cover_url": "..."}
Use a one or two sentence description. Leave a field as an empty string
if you are not confident. Do not invent a cover_url unless you know a
real, publicly reachable image URL for this book's cover.`

// GenerativeClient fetches book suggestions from a Gemini-style
// generateContent endpoint.
type GenerativeClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	limiter    *rate.Limiter
}

// NewGenerativeClient creates a client from the enrichment config.
// It is safe to construct without an API key; calls will return
// ErrNotConfigured.
func NewGenerativeClient(cfg config.Enrichment) *GenerativeClient {
	return &GenerativeClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		// One request per second keeps us well under free-tier quotas.
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
}

// Configured reports whether an API key is present.
func (c *GenerativeClient) Configured() bool {
	return c.apiKey != ""
}

// generateContent request/response types, trimmed to the fields we use.

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// SuggestByTitle asks the model for the book's author, genre,
// description and cover URL.
func (c *GenerativeClient) SuggestByTitle(ctx context.Context, title, author string) (*BookMetadata, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	authorHint := ""
	if author != "" {
		authorHint = fmt.Sprintf(" by %q", author)
	}
	prompt := fmt.Sprintf(suggestionPrompt, title, authorHint)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	return parseSuggestion(result.Candidates[0].Content.Parts[0].Text)
}

// parseSuggestion extracts the JSON object from the model output.
// Models occasionally wrap the payload in markdown fences despite the
// prompt, so those are stripped first.
func parseSuggestion(text string) (*BookMetadata, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var metadata BookMetadata
	if err := json.Unmarshal([]byte(text), &metadata); err != nil {
		return nil, fmt.Errorf("%w: malformed suggestion: %v", ErrUnavailable, err)
	}

	metadata.Author = strings.TrimSpace(metadata.Author)
	metadata.Genre = strings.TrimSpace(metadata.Genre)
	metadata.Description = strings.TrimSpace(metadata.Description)
	metadata.CoverURL = strings.TrimSpace(metadata.CoverURL)

	return &metadata, nil
}

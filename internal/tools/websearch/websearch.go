// Package websearch provides a web search tool backed by the Tavily
// API, for when the indexed document cannot answer a question on its
// own (market conditions, ratings, news).
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/prism-labs/memogen/internal/core/ports/driven"
)

// Ensure Tool implements the interface.
var _ driven.Tool = (*Tool)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.tavily.com"
	DefaultMaxResults = 3
	DefaultTimeout    = 20 * time.Second
	DefaultRate       = 1 // requests per second

	// snippetLimit truncates each result before it enters a prompt.
	snippetLimit = 500
)

// Config holds configuration for the web search tool.
type Config struct {
	// APIKey is the Tavily API key (required).
	APIKey string

	// BaseURL is the Tavily API base URL (default: https://api.tavily.com).
	BaseURL string

	// MaxResults bounds results per search (default: 3).
	MaxResults int

	// Timeout is the request timeout (default: 20s).
	Timeout time.Duration
}

// Tool searches the web via Tavily.
type Tool struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	maxResults int
}

// searchRequest is the Tavily /search request format.
type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
}

// searchResponse is the Tavily /search response format.
type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// New creates a web search tool.
func New(cfg Config) (*Tool, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("websearch: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Tool{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
	}, nil
}

// Name implements driven.Tool.
func (t *Tool) Name() string {
	return "web_search"
}

// Description implements driven.Tool.
func (t *Tool) Description() string {
	return "web_search(query) - Search the web for external information"
}

// Invoke runs one search. The observation leads with Tavily's
// synthesised answer when present, followed by truncated snippets.
func (t *Tool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("websearch: missing query argument")
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}

	jsonBody, err := json.Marshal(searchRequest{
		APIKey:        t.apiKey,
		Query:         query,
		MaxResults:    t.maxResults,
		SearchDepth:   "basic",
		IncludeAnswer: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.baseURL+"/search",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("tavily error (status %d): %s", resp.StatusCode, string(body))
	}

	var sResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return format(query, sResp), nil
}

// format renders the response as prompt-ready text.
func format(query string, resp searchResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Web search results for %q:\n", query)

	n := 0
	if resp.Answer != "" {
		n++
		fmt.Fprintf(&sb, "\n%d. Summary: %s\n", n, snippet(resp.Answer))
	}
	for _, r := range resp.Results {
		if r.Content == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "\n%d. %s\n", n, snippet(r.Content))
	}

	if n == 0 {
		return fmt.Sprintf("No web results found for: %s", query)
	}
	return sb.String()
}

// snippet truncates a result for prompt injection.
func snippet(s string) string {
	if len(s) <= snippetLimit {
		return s
	}
	return s[:snippetLimit] + "..."
}

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"agent-orchestrator/internal/domain"
	"agent-orchestrator/internal/infra/cache"
)

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"published_date"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

// Client calls an external web search API. Results are cached by query and
// result count, and outbound calls are rate limited so a burst of uncached
// queries cannot exhaust the provider quota.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	results *cache.Cache[[]domain.WebItem]
	ttl     time.Duration
	logger  *slog.Logger
}

// NewClient constructs a web search client. rps bounds outbound requests per
// second; ttl controls how long a result set stays cached.
func NewClient(baseURL, apiKey string, client *http.Client, rps float64, ttl time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		results: cache.New[[]domain.WebItem](),
		ttl:     ttl,
		logger:  logger,
	}
}

func (c *Client) Search(ctx context.Context, query string, k int) ([]domain.WebItem, int64, error) {
	if c.apiKey == "" {
		return nil, 0, fmt.Errorf("WEB_SEARCH_API_KEY is not configured")
	}

	start := time.Now()
	key := cache.Key("web.search", query, k)
	if items, ok := c.results.Get(key); ok {
		c.logger.Debug("web_search_cache_hit", slog.String("query", query))
		return items, time.Since(start).Milliseconds(), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	items, err := c.fetch(ctx, query, k)
	if err != nil {
		return nil, 0, err
	}

	c.results.Set(key, items, c.ttl)
	return items, time.Since(start).Milliseconds(), nil
}

func (c *Client) fetch(ctx context.Context, query string, k int) ([]domain.WebItem, error) {
	reqBody := searchRequest{APIKey: c.apiKey, Query: query, MaxResults: k}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/search", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call search API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]domain.WebItem, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		items = append(items, domain.WebItem{
			Title:     r.Title,
			URL:       r.URL,
			Snippet:   r.Content,
			Time:      r.PublishedDate,
			InitScore: r.Score,
		})
	}
	return items, nil
}

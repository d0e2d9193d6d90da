// Package websearch implements the optional web evidence capability on the
// Tavily search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-notes-rag-be/pkg/rag"
)

const defaultBaseURL = "https://api.tavily.com"

// DefaultMaxResults mirrors the top-3 web widening of the pipeline.
const DefaultMaxResults = 3

// TavilyClient implements rag.WebSearch. Construct only when an API key is
// configured; the workflow treats a nil rag.WebSearch as capability absent.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
}

var _ rag.WebSearch = (*TavilyClient)(nil)

// Option customizes the client.
type Option func(*TavilyClient)

// WithBaseURL overrides the API endpoint (tests).
func WithBaseURL(url string) Option {
	return func(c *TavilyClient) { c.baseURL = url }
}

// WithMaxResults bounds how many results a search returns.
func WithMaxResults(n int) Option {
	return func(c *TavilyClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

func NewTavilyClient(apiKey string, opts ...Option) *TavilyClient {
	c := &TavilyClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: DefaultMaxResults,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResult struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Score   *float64 `json:"score,omitempty"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Search returns ranked web results for the query.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]rag.WebResult, error) {
	body, err := json.Marshal(searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]rag.WebResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		wr := rag.WebResult{Title: r.Title, Content: r.Content}
		if r.Score != nil {
			wr.Score = *r.Score
			wr.HasScore = true
		}
		results = append(results, wr)
	}
	return results, nil
}

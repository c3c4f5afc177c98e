package freya

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SearchResult is one web citation spliced into the user prompt.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type SearchClient interface {
	Search(ctx context.Context, query string, max int) ([]SearchResult, error)
}

// HTTPSearchClient posts the query to a search API endpoint. Search failures
// are tolerated upstream: the dispatcher degrades to zero citations.
type HTTPSearchClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPSearchClient(endpoint, apiKey string) *HTTPSearchClient {
	return &HTTPSearchClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPSearchClient) Search(ctx context.Context, query string, max int) ([]SearchResult, error) {
	if c.endpoint == "" {
		return nil, nil
	}
	payload, err := json.Marshal(map[string]any{"query": query, "max_results": max})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search api status %d", resp.StatusCode)
	}
	var body struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Results) > max {
		body.Results = body.Results[:max]
	}
	return body.Results, nil
}

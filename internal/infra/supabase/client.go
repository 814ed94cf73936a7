package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"goonzette-automation/internal/infra/metrics"
)

// Client talks to a Supabase PostgREST endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a PostgREST client. Both the project URL and the API key
// are required.
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("supabase: url is empty")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase: api key is empty")
	}
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}, nil
}

// Insert creates one row in the table. The response body is suppressed with
// Prefer: return=minimal.
func (c *Client) Insert(ctx context.Context, table string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("supabase: marshal payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}
	c.applyHeaders(req)
	req.Header.Set("Prefer", "return=minimal")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveNetworkRequest("supabase", "insert", table, start, err)
	if err != nil {
		return fmt.Errorf("supabase: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("supabase: insert into %s: status %d: %s", table, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

// Select queries the table with PostgREST filters and decodes the rows into out.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, url.PathEscape(table))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}
	c.applyHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveNetworkRequest("supabase", "select", table, start, err)
	if err != nil {
		return fmt.Errorf("supabase: do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("supabase: select from %s: status %d: %s", table, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase: decode response: %w", err)
	}
	return nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

package website

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"goonzette-automation/internal/infra/metrics"
)

// Client triggers actions on the public website.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates the website client.
func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type pdfTrigger struct {
	Date    string `json:"date"`
	Trigger string `json:"trigger"`
}

// TriggerPDF asks the website to render the date's edition to PDF with its
// headless browser.
func (c *Client) TriggerPDF(ctx context.Context, date string) error {
	body, err := json.Marshal(pdfTrigger{Date: date, Trigger: "bot"})
	if err != nil {
		return fmt.Errorf("marshal trigger: %w", err)
	}
	endpoint := c.baseURL + "/api/generate-pdf"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveNetworkRequest("website", "generate_pdf", "edition", start, err)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pdf trigger failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return nil
}

package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateMessage(t *testing.T) {
	var gotReq MessagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != apiVersion {
			t.Errorf("missing version header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(MessagesResponse{
			Content: []ContentBlock{
				{Type: "text", Text: "part one "},
				{Type: "tool_use"},
				{Type: "text", Text: "part two"},
			},
			Usage: &Usage{InputTokens: 42, OutputTokens: 17},
		})
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, time.Minute)
	resp, err := client.CreateMessage(context.Background(), MessagesRequest{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 500,
		Messages:  []Message{{Role: RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	if gotReq.Model != "claude-sonnet-4-20250514" || gotReq.MaxTokens != 500 {
		t.Fatalf("request not forwarded: %+v", gotReq)
	}
	if resp.Text() != "part one part two" {
		t.Fatalf("Text() must join text blocks only, got %q", resp.Text())
	}
}

func TestCreateMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, time.Minute)
	_, err := client.CreateMessage(context.Background(), MessagesRequest{Model: "m", MaxTokens: 10})
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestCreateMessageMissingKey(t *testing.T) {
	client := NewClient("", "http://localhost:0", time.Minute)
	_, err := client.CreateMessage(context.Background(), MessagesRequest{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestInsertHeadersAndBody(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/v1/articles" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("apikey") != "service-key" {
			t.Errorf("missing apikey header")
		}
		if r.Header.Get("Authorization") != "Bearer service-key" {
			t.Errorf("missing bearer header")
		}
		if r.Header.Get("Prefer") != "return=minimal" {
			t.Errorf("missing Prefer header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "service-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Insert(context.Background(), "articles", map[string]string{"title": "x"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if gotBody["title"] != "x" {
		t.Fatalf("payload not forwarded: %v", gotBody)
	}
}

func TestSelectDecodesRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") != "eq.2026-01-05" {
			t.Errorf("filter not forwarded: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode([]map[string]any{{"date": "2026-01-05"}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "service-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	var rows []map[string]any
	query := url.Values{"date": {"eq.2026-01-05"}}
	if err := client.Select(context.Background(), "discord_summaries", query, &rows); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(rows) != 1 || rows[0]["date"] != "2026-01-05" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestInsertSurfacesStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "service-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Insert(context.Background(), "articles", map[string]string{}); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient("", "key"); err == nil {
		t.Fatalf("expected error on empty url")
	}
	if _, err := NewClient("http://x", ""); err == nil {
		t.Fatalf("expected error on empty key")
	}
}

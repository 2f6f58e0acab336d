package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

func TestSearch(t *testing.T) {
	var gotBody searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("unexpected api key header: %s", r.Header.Get("X-API-KEY"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{Organic: []domain.WebResult{
			{Title: "Trailhead", Link: "https://trailhead.salesforce.com", Snippet: "Learn Salesforce"},
		}})
	}))
	defer server.Close()

	c := NewClient(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: time.Second,
		Logger:  zap.NewNop(),
	})

	results, err := c.Search(context.Background(), "salesforce admin resources", "web")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Trailhead" {
		t.Fatalf("unexpected results: %+v", results)
	}

	if gotBody.Q != "salesforce admin resources" || gotBody.Num != 10 {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if gotBody.Tbs != "" {
		t.Errorf("web search should not restrict date range, got %q", gotBody.Tbs)
	}
}

func TestSearch_NewsRestrictsToLastMonth(t *testing.T) {
	var gotBody searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	c := NewClient(&Config{APIKey: "test-key", BaseURL: server.URL, Timeout: time.Second, Logger: zap.NewNop()})

	if _, err := c.Search(context.Background(), "salesforce news", "news"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotBody.Tbs != "qdr:m" {
		t.Errorf("expected qdr:m for news, got %q", gotBody.Tbs)
	}
}

func TestSearch_NoAPIKey(t *testing.T) {
	c := NewClient(&Config{BaseURL: "http://unused", Timeout: time.Second, Logger: zap.NewNop()})

	results, err := c.Search(context.Background(), "anything", "web")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results without api key, got %+v", results)
	}
}

func TestSearch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(&Config{APIKey: "test-key", BaseURL: server.URL, Timeout: time.Second, Logger: zap.NewNop()})

	if _, err := c.Search(context.Background(), "anything", "web"); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

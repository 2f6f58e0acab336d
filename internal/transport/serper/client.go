// Package serper calls the Serper.dev Google search API for the resource
// finder.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// Client searches the web through the Serper API. A client with an empty API
// key is valid and returns no results, so the resource finder can run on its
// fallback data without configuration.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds Serper API settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates a Serper client.
func NewClient(cfg *Config) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger,
	}
}

type searchRequest struct {
	Q    string `json:"q"`
	Type string `json:"type"`
	Num  int    `json:"num"`
	Tbs  string `json:"tbs,omitempty"`
}

type searchResponse struct {
	Organic []domain.WebResult `json:"organic"`
}

// Search runs a web search and returns organic results. kind is "web" or
// "news"; news searches are restricted to the last month.
func (c *Client) Search(ctx context.Context, query, kind string) ([]domain.WebResult, error) {
	if c.apiKey == "" {
		c.logger.Warn("Serper API key not configured, returning empty results")
		return nil, nil
	}

	reqBody := searchRequest{Q: query, Type: kind, Num: 10}
	if kind == "news" {
		reqBody.Tbs = "qdr:m"
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper API error: status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}
	return parsed.Organic, nil
}

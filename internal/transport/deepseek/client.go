// Package deepseek provides chat completions over the DeepSeek
// OpenAI-compatible API.
package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/metrics"
)

// Client is a chat completion provider using the OpenAI-compatible API.
type Client struct {
	client       *openai.Client
	defaultModel string
	provider     string
	logger       *zap.Logger
}

// Config holds the completion provider settings.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultModel string
	Provider     string
	Timeout      time.Duration
	Logger       *zap.Logger
}

// NewClient creates an OpenAI-compatible chat completion provider. Timeout
// bounds every API call; reasoner completions can run long, so it must come
// from config rather than the transport default.
func NewClient(cfg *Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.DefaultModel,
		provider:     cfg.Provider,
		logger:       cfg.Logger,
	}
}

// Compile-time checks.
var (
	_ domain.Completer             = (*Client)(nil)
	_ domain.ProviderHealthChecker = (*Client)(nil)
)

// Complete implements domain.Completer. Returns the completion text and usage
// with transport-level metrics.
func (c *Client) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(c.provider, model, "api_error").Inc()
		return domain.CompletionResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.provider, model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(c.provider, model, "empty_response").Inc()
		return domain.CompletionResult{}, fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.provider, model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.provider, model).Observe(duration.Seconds())

	totalTokens := resp.Usage.TotalTokens
	promptTokens := resp.Usage.PromptTokens
	if totalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(c.provider, model, "prompt").Add(float64(promptTokens))
		metrics.LLMTokensTotal.WithLabelValues(c.provider, model, "total").Add(float64(totalTokens))
	}

	return domain.CompletionResult{
		Content:      resp.Choices[0].Message.Content,
		PromptTokens: promptTokens,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractMessage(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("completion API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %v: %w", err, wrap)
}

// extractMessage extracts the "error.message" field from a JSON error body
// (DeepSeek error format).
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return ""
}

package domain

import "context"

// Completer is the shared chat completion contract between layers.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// ProviderHealthChecker verifies LLM provider availability.
type ProviderHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionRequest describes a single chat completion call.
// Model selects between the provider's chat and reasoner models; an empty
// value falls back to the provider default.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// CompletionResult carries the completion text and token usage through the
// decorator chain.
type CompletionResult struct {
	Content      string
	PromptTokens int
	TotalTokens  int
}

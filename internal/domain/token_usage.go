package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects LLM token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the
// service; the service writes after each completion; the handler reads it for
// the query log and usage analytics.
type TokenUsage struct {
	TotalTokens int
	Used        bool // true if a completion was attempted, even on a cache hit with 0 tokens
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddTokens records consumed tokens.
func (u *TokenUsage) AddTokens(n int) {
	if u != nil {
		u.TotalTokens += n
		u.Used = true
	}
}

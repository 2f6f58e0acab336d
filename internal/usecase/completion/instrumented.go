package completion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedCompleter wraps a Completer with budget enforcement and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/deepseek.
// This layer owns budget tracking and budget-related metrics only.
type InstrumentedCompleter struct {
	inner    domain.Completer
	provider string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedCompleter wraps a completer with budget and observability.
func NewInstrumentedCompleter(
	inner domain.Completer, provider string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedCompleter {
	return &InstrumentedCompleter{
		inner:    inner,
		provider: provider,
		budget:   budget,
		logger:   logger,
	}
}

// Complete checks budget, delegates to the inner completer, and records usage.
// Consumed tokens are also accumulated into the request-scoped TokenUsage if
// one is attached to the context.
func (p *InstrumentedCompleter) Complete(
	ctx context.Context, req domain.CompletionRequest,
) (domain.CompletionResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", req.Model),
				zap.Error(err),
			)
			return domain.CompletionResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := p.inner.Complete(ctx, req)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Completion request failed",
			zap.String("provider", p.provider),
			zap.String("model", req.Model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, fmt.Errorf("complete: %w", err)
	}

	if p.budget != nil && result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.LLMBudgetTokensRemaining
		remaining.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	domain.UsageFromContext(ctx).AddTokens(result.TotalTokens)

	p.logger.Debug("Completion request completed",
		zap.String("provider", p.provider),
		zap.String("model", req.Model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

package usage

import (
	"context"
	"time"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	DailyLimit() int64
	MonthlyLimit() int64
	DailyUsed() int64
	MonthlyUsed() int64
	RemainingDaily() int64
	RemainingMonthly() int64
}

// AnalyticsReader aggregates persisted usage rows.
type AnalyticsReader interface {
	UsageSince(ctx context.Context, since time.Time) (domain.UsageSummary, error)
}

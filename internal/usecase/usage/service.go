// Package usage builds token spend reports from the in-memory budget tracker
// and the persisted analytics rows.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// Period selects the report window.
type Period string

const (
	// PeriodDay covers the current UTC day.
	PeriodDay Period = "day"
	// PeriodMonth covers the current UTC month.
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period query parameter. Empty means day.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodDay, nil
	case PeriodDay:
		return PeriodDay, nil
	case PeriodMonth:
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("%w: period must be \"day\" or \"month\", got %q", domain.ErrInvalidQuery, s)
}

// Report is a usage report for one period.
type Report struct {
	Period      Period
	PeriodStart time.Time
	PeriodEnd   time.Time

	// Aggregated from persisted analytics rows.
	Operations     int64
	TokensConsumed int64
	CostEstimate   float64
	Failures       int64

	// Budget state from the in-memory tracker. Zero limits mean unlimited.
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	Exhausted       bool
}

// Service handles usage reporting.
type Service struct {
	budget    BudgetReader
	analytics AnalyticsReader
}

// New creates a Service. budget can be nil (unlimited mode).
func New(budget BudgetReader, analytics AnalyticsReader) *Service {
	return &Service{budget: budget, analytics: analytics}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(ctx context.Context, period Period) (Report, error) {
	now := time.Now().UTC()

	r := Report{Period: period}
	switch period {
	case PeriodMonth:
		r.PeriodStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 1, 0)
		if s.budget != nil {
			r.TokensLimit = s.budget.MonthlyLimit()
			r.TokensUsed = s.budget.MonthlyUsed()
			r.TokensRemaining = s.budget.RemainingMonthly()
		}
	default:
		r.PeriodStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.Add(24 * time.Hour)
		if s.budget != nil {
			r.TokensLimit = s.budget.DailyLimit()
			r.TokensUsed = s.budget.DailyUsed()
			r.TokensRemaining = s.budget.RemainingDaily()
		}
	}
	r.Exhausted = r.TokensLimit > 0 && r.TokensRemaining <= 0

	summary, err := s.analytics.UsageSince(ctx, r.PeriodStart)
	if err != nil {
		return Report{}, fmt.Errorf("aggregate usage: %w", err)
	}
	r.Operations = summary.Operations
	r.TokensConsumed = summary.TokensConsumed
	r.CostEstimate = summary.CostEstimate
	r.Failures = summary.Failures

	return r, nil
}

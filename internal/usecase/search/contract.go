package search

import (
	"context"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// ContentSource provides pattern-match lookups over the four content
// collections.
type ContentSource interface {
	SearchRawContent(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
	SearchLearningPaths(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
	SearchFlashcardSets(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
	SearchSummaries(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}

// QueryLog appends search records, popularity counters and usage analytics.
type QueryLog interface {
	InsertSearch(ctx context.Context, rec domain.SearchRecord) (string, error)
	BumpPopular(ctx context.Context, queryText string) error
	InsertUsage(ctx context.Context, rec domain.UsageRecord) error
}

// HistoryReader reads the query log back for the history and popular
// endpoints.
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error)
}

package resources

import (
	"context"
	"time"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// WebSearcher runs live web searches for resource discovery. kind is "web" or
// "news".
type WebSearcher interface {
	Search(ctx context.Context, query, kind string) ([]domain.WebResult, error)
}

// UsageLog records per-operation token analytics.
type UsageLog interface {
	InsertUsage(ctx context.Context, rec domain.UsageRecord) error
}

// store is the consumer interface for the curation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

package generate

import (
	"context"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// ContentWriter persists generated artifacts.
type ContentWriter interface {
	InsertSummary(ctx context.Context, rec domain.SummaryRecord) (string, error)
	InsertFlashcardSet(ctx context.Context, rec domain.FlashcardSetRecord) (string, error)
	InsertLearningPath(ctx context.Context, rec domain.LearningPathRecord) (string, error)
}

// UsageLog records per-operation token analytics.
type UsageLog interface {
	InsertUsage(ctx context.Context, rec domain.UsageRecord) error
}

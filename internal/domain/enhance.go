package domain

import "context"

// ResultSummary is the slice of a search result an enhancer sees.
type ResultSummary struct {
	ID          string
	Title       string
	Description string
	ContentType ContentType
	Score       float64
}

// EnhancementInput carries everything the enhancer needs to narrate a
// result set.
type EnhancementInput struct {
	Query       string
	UserContext string
	Results     []ResultSummary
}

// Enhancement is the LLM narrative over a result set. Tokens is 0 when the
// answer came from cache.
type Enhancement struct {
	Response        string
	Recommendations []string
	Tokens          int
}

// Enhancer produces an AI narrative for a search result set.
type Enhancer interface {
	Enhance(ctx context.Context, in EnhancementInput) (Enhancement, error)
}

package domain

import "time"

// KeyPrefix namespaces all cache keys.
const KeyPrefix = "learnhub:"

// Source identifies one of the four searchable content collections.
type Source string

const (
	SourceRawContent    Source = "raw_content"
	SourceLearningPaths Source = "learning_paths"
	SourceFlashcardSets Source = "flashcard_sets"
	SourceSummaries     Source = "summaries"
)

// Sources lists all searchable sources in merge insertion order.
// The order is part of the ranking contract: ties between sources keep it.
func Sources() []Source {
	return []Source{SourceRawContent, SourceLearningPaths, SourceFlashcardSets, SourceSummaries}
}

// IsValid reports whether s names a known source.
func (s Source) IsValid() bool {
	switch s {
	case SourceRawContent, SourceLearningPaths, SourceFlashcardSets, SourceSummaries:
		return true
	}
	return false
}

// ContentType classifies an item for rendering.
type ContentType string

const (
	ContentTrailheadModule ContentType = "trailhead_module"
	ContentArticle         ContentType = "article"
	ContentLearningPath    ContentType = "learning_path"
	ContentFlashcardSet    ContentType = "flashcard_set"
	ContentSummary         ContentType = "summary"
)

// Candidate is a searchable item as returned by a collection lookup,
// before scoring. MatchText is the text the relevance scorer runs against;
// it is never rendered.
type Candidate struct {
	ID          string
	Title       string
	Description string
	ContentType ContentType
	CreatedAt   time.Time
	MatchText   string
}

package domain

// SummaryRecord is a generated summary to persist.
type SummaryRecord struct {
	Title             string
	SummaryText       string
	Length            string
	OriginalContentID string
	CostInTokens      int
}

// FlashcardSetRecord is a generated flashcard set to persist. Cards holds the
// JSON-encoded card list.
type FlashcardSetRecord struct {
	Topic        string
	NumCards     int
	Cards        []byte
	CostInTokens int
}

// LearningPathRecord is a generated learning path to persist. Steps holds the
// JSON-encoded step list.
type LearningPathRecord struct {
	Title         string
	Description   string
	RequestPrompt string
	Steps         []byte
	CostInTokens  int
}

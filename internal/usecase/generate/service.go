// Package generate implements the AI content generation operations:
// summaries, flashcard sets and learning paths.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// Summary lengths.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Content sent to the model is truncated to keep token spend bounded.
const (
	maxSummaryContentLen   = 15000
	maxFlashcardContentLen = 12000
)

// Flashcard limits.
const (
	MinFlashcards     = 1
	MaxFlashcards     = 50
	DefaultFlashcards = 10
)

// Config holds generation settings.
type Config struct {
	ChatModel              string
	ReasonerModel          string
	ChatCostPerMillion     float64
	ReasonerCostPerMillion float64
}

// Service generates and persists AI learning artifacts.
type Service struct {
	completer domain.Completer
	store     ContentWriter
	usage     UsageLog
	cfg       Config
	logger    *zap.Logger
}

// New creates a generation service.
func New(completer domain.Completer, store ContentWriter, usage UsageLog, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		completer: completer,
		store:     store,
		usage:     usage,
		cfg:       cfg,
		logger:    logger,
	}
}

// SummarizeInput are the parameters for one summarization.
type SummarizeInput struct {
	Content string
	Title   string
	Length  string
	Focus   string
}

// Summary is a generated content summary.
type Summary struct {
	ID            string
	Text          string
	KeyConcepts   []string
	Length        string
	TokensUsed    int
	EstimatedCost float64
	ModelUsed     string
}

// Summarize produces and persists an AI summary of the given content. A model
// answer that is not the requested JSON shape degrades to the raw completion
// text with no key concepts.
func (s *Service) Summarize(ctx context.Context, in SummarizeInput) (Summary, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return Summary{}, fmt.Errorf("%w: content is required", domain.ErrInvalidQuery)
	}
	length := in.Length
	if length == "" {
		length = LengthMedium
	}
	switch length {
	case LengthShort, LengthMedium, LengthLong:
	default:
		return Summary{}, fmt.Errorf("%w: invalid summary_length %q", domain.ErrInvalidQuery, in.Length)
	}
	content = truncate(content, maxSummaryContentLen)

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      summarizeSystemPrompt,
		Prompt:      buildSummarizePrompt(content, length, in.Focus),
		Model:       s.cfg.ChatModel,
		MaxTokens:   2000,
		Temperature: 0.3,
	})
	if err != nil {
		s.recordUsage(ctx, "summary", s.cfg.ChatModel, 0, 0, false)
		return Summary{}, fmt.Errorf("summarize completion: %w", err)
	}

	text := res.Content
	var keyConcepts []string
	if data, jerr := domain.ExtractJSON(res.Content); jerr == nil {
		var parsed struct {
			Summary     string   `json:"summary"`
			KeyConcepts []string `json:"key_concepts"`
		}
		if uerr := json.Unmarshal(data, &parsed); uerr == nil && parsed.Summary != "" {
			text = parsed.Summary
			keyConcepts = parsed.KeyConcepts
		}
	}

	title := in.Title
	if title == "" {
		title = "Content Summary"
	}
	id := s.saveSummary(ctx, domain.SummaryRecord{
		Title:        title,
		SummaryText:  text,
		Length:       length,
		CostInTokens: res.TotalTokens,
	})

	cost := s.cost(res.TotalTokens, s.cfg.ChatCostPerMillion)
	s.recordUsage(ctx, "summary", s.cfg.ChatModel, res.TotalTokens, cost, true)

	return Summary{
		ID:            id,
		Text:          text,
		KeyConcepts:   keyConcepts,
		Length:        length,
		TokensUsed:    res.TotalTokens,
		EstimatedCost: cost,
		ModelUsed:     s.cfg.ChatModel,
	}, nil
}

// FlashcardsInput are the parameters for one flashcard generation.
type FlashcardsInput struct {
	Content       string
	Topic         string
	NumCards      int
	Certification string
}

// Flashcard is a single generated study card.
type Flashcard struct {
	Question               string   `json:"question"`
	Answer                 string   `json:"answer"`
	Explanation            string   `json:"explanation,omitempty"`
	Tags                   []string `json:"tags"`
	Difficulty             string   `json:"difficulty"`
	CertificationRelevance []string `json:"certification_relevance,omitempty"`
}

// FlashcardSet is a generated flashcard deck.
type FlashcardSet struct {
	ID            string
	Topic         string
	Flashcards    []Flashcard
	TokensUsed    int
	EstimatedCost float64
	ModelUsed     string
}

// GenerateFlashcards produces and persists a flashcard set. Unlike summaries,
// an unparseable model answer is an error: a deck that cannot be rendered as
// cards has no degraded form worth returning.
func (s *Service) GenerateFlashcards(ctx context.Context, in FlashcardsInput) (FlashcardSet, error) {
	topic := strings.TrimSpace(in.Topic)
	if topic == "" {
		return FlashcardSet{}, fmt.Errorf("%w: topic is required", domain.ErrInvalidQuery)
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return FlashcardSet{}, fmt.Errorf("%w: content is required", domain.ErrInvalidQuery)
	}
	numCards := in.NumCards
	if numCards == 0 {
		numCards = DefaultFlashcards
	}
	if numCards < MinFlashcards || numCards > MaxFlashcards {
		return FlashcardSet{}, fmt.Errorf(
			"%w: num_flashcards must be between %d and %d",
			domain.ErrInvalidQuery, MinFlashcards, MaxFlashcards,
		)
	}
	content = truncate(content, maxFlashcardContentLen)

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      flashcardsSystemPrompt,
		Prompt:      buildFlashcardsPrompt(content, topic, numCards, in.Certification),
		Model:       s.cfg.ReasonerModel,
		MaxTokens:   6000,
		Temperature: 0.4,
	})
	if err != nil {
		s.recordUsage(ctx, "flashcards", s.cfg.ReasonerModel, 0, 0, false)
		return FlashcardSet{}, fmt.Errorf("flashcards completion: %w", err)
	}

	cards, err := parseFlashcards(res.Content)
	if err != nil {
		s.recordUsage(ctx, "flashcards", s.cfg.ReasonerModel, res.TotalTokens, s.cost(res.TotalTokens, s.cfg.ReasonerCostPerMillion), false)
		return FlashcardSet{}, err
	}

	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return FlashcardSet{}, fmt.Errorf("encode flashcards: %w", err)
	}
	id := s.saveFlashcardSet(ctx, domain.FlashcardSetRecord{
		Topic:        topic,
		NumCards:     len(cards),
		Cards:        cardsJSON,
		CostInTokens: res.TotalTokens,
	})

	cost := s.cost(res.TotalTokens, s.cfg.ReasonerCostPerMillion)
	s.recordUsage(ctx, "flashcards", s.cfg.ReasonerModel, res.TotalTokens, cost, true)

	return FlashcardSet{
		ID:            id,
		Topic:         topic,
		Flashcards:    cards,
		TokensUsed:    res.TotalTokens,
		EstimatedCost: cost,
		ModelUsed:     s.cfg.ReasonerModel,
	}, nil
}

// LearningPathInput are the parameters for one learning path generation.
type LearningPathInput struct {
	Prompt            string
	ExistingKnowledge string
	LearningStyle     string
	TimeCommitment    string
}

// PathModule is one step of a generated learning path.
type PathModule struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	TrailheadLink     string   `json:"trailhead_link,omitempty"`
	DeveloperDocsLink string   `json:"developer_docs_link,omitempty"`
	EstimatedTime     string   `json:"estimated_time"`
	Difficulty        string   `json:"difficulty"`
	KeyConcepts       []string `json:"key_concepts"`
	Prerequisites     []string `json:"prerequisites,omitempty"`
}

// LearningPath is a generated structured learning path.
type LearningPath struct {
	ID                     string       `json:"id,omitempty"`
	Title                  string       `json:"title"`
	Description            string       `json:"description"`
	DifficultyLevel        string       `json:"difficulty_level"`
	EstimatedTotalDuration string       `json:"estimated_total_duration"`
	Modules                []PathModule `json:"modules"`
	CertificationAlignment []string     `json:"certification_alignment,omitempty"`
	NextSteps              []string     `json:"next_steps,omitempty"`
	TokensUsed             int          `json:"-"`
	EstimatedCost          float64      `json:"-"`
	ModelUsed              string       `json:"-"`
}

// GenerateLearningPath produces and persists a structured learning path.
func (s *Service) GenerateLearningPath(ctx context.Context, in LearningPathInput) (LearningPath, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return LearningPath{}, fmt.Errorf("%w: prompt is required", domain.ErrInvalidQuery)
	}

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      learningPathSystemPrompt,
		Prompt:      buildLearningPathPrompt(prompt, in.ExistingKnowledge, in.LearningStyle, in.TimeCommitment),
		Model:       s.cfg.ReasonerModel,
		MaxTokens:   8000,
		Temperature: 0.6,
	})
	if err != nil {
		s.recordUsage(ctx, "learning_path", s.cfg.ReasonerModel, 0, 0, false)
		return LearningPath{}, fmt.Errorf("learning path completion: %w", err)
	}

	path, err := parseLearningPath(res.Content)
	if err != nil {
		s.recordUsage(ctx, "learning_path", s.cfg.ReasonerModel, res.TotalTokens, s.cost(res.TotalTokens, s.cfg.ReasonerCostPerMillion), false)
		return LearningPath{}, err
	}

	stepsJSON, err := json.Marshal(path.Modules)
	if err != nil {
		return LearningPath{}, fmt.Errorf("encode learning path steps: %w", err)
	}
	path.ID = s.saveLearningPath(ctx, domain.LearningPathRecord{
		Title:         path.Title,
		Description:   path.Description,
		RequestPrompt: prompt,
		Steps:         stepsJSON,
		CostInTokens:  res.TotalTokens,
	})

	cost := s.cost(res.TotalTokens, s.cfg.ReasonerCostPerMillion)
	s.recordUsage(ctx, "learning_path", s.cfg.ReasonerModel, res.TotalTokens, cost, true)

	path.TokensUsed = res.TotalTokens
	path.EstimatedCost = cost
	path.ModelUsed = s.cfg.ReasonerModel
	return path, nil
}

func parseFlashcards(content string) ([]Flashcard, error) {
	data, err := domain.ExtractJSON(content)
	if err != nil {
		return nil, fmt.Errorf("parse flashcards: %w", err)
	}
	var parsed struct {
		Flashcards []Flashcard `json:"flashcards"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse flashcards: %w: %v", domain.ErrMalformedCompletion, err)
	}
	if len(parsed.Flashcards) == 0 {
		return nil, fmt.Errorf("parse flashcards: %w: empty flashcards array", domain.ErrMalformedCompletion)
	}
	return parsed.Flashcards, nil
}

func parseLearningPath(content string) (LearningPath, error) {
	data, err := domain.ExtractJSON(content)
	if err != nil {
		return LearningPath{}, fmt.Errorf("parse learning path: %w", err)
	}
	var path LearningPath
	if err := json.Unmarshal(data, &path); err != nil {
		return LearningPath{}, fmt.Errorf("parse learning path: %w: %v", domain.ErrMalformedCompletion, err)
	}
	if path.Title == "" || len(path.Modules) == 0 {
		return LearningPath{}, fmt.Errorf("parse learning path: %w: missing title or modules", domain.ErrMalformedCompletion)
	}
	return path, nil
}

// saveSummary persists best-effort: a failed write loses the stored copy but
// not the generated result.
func (s *Service) saveSummary(ctx context.Context, rec domain.SummaryRecord) string {
	id, err := s.store.InsertSummary(ctx, rec)
	if err != nil {
		s.logger.Warn("Failed to save summary", zap.Error(err))
		return ""
	}
	return id
}

func (s *Service) saveFlashcardSet(ctx context.Context, rec domain.FlashcardSetRecord) string {
	id, err := s.store.InsertFlashcardSet(ctx, rec)
	if err != nil {
		s.logger.Warn("Failed to save flashcard set", zap.Error(err))
		return ""
	}
	return id
}

func (s *Service) saveLearningPath(ctx context.Context, rec domain.LearningPathRecord) string {
	id, err := s.store.InsertLearningPath(ctx, rec)
	if err != nil {
		s.logger.Warn("Failed to save learning path", zap.Error(err))
		return ""
	}
	return id
}

func (s *Service) recordUsage(ctx context.Context, op, model string, tokens int, cost float64, success bool) {
	err := s.usage.InsertUsage(ctx, domain.UsageRecord{
		OperationType:  op,
		ModelUsed:      model,
		TokensConsumed: tokens,
		CostEstimate:   cost,
		Success:        success,
	})
	if err != nil {
		s.logger.Warn("Failed to append usage record",
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}

func (s *Service) cost(tokens int, perMillion float64) float64 {
	return float64(tokens) / 1_000_000 * perMillion
}

// truncate cuts content at max characters, marking the cut with an ellipsis.
// Cuts on rune boundaries so multibyte text never reaches the model broken.
func truncate(content string, max int) string {
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max]) + "..."
}

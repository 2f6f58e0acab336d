// Package content implements pattern-match lookups over the four searchable
// collections in Postgres, plus inserts for generated artifacts.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// DB defines the database capabilities required by the content repository.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Compile-time check: pgxpool.Pool satisfies DB.
var _ DB = (*pgxpool.Pool)(nil)

// Repo queries and persists content collections.
type Repo struct {
	db DB
}

// New creates a content repository.
func New(db DB) *Repo {
	return &Repo{db: db}
}

const descriptionSnippetLen = 200

// SearchRawContent matches the query against title and raw text of ingested
// content. Match text for scoring is title plus raw text.
func (r *Repo) SearchRawContent(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	const sql = `
SELECT id, title, COALESCE(description, ''), raw_text, content_type, created_at
FROM raw_content
WHERE title ILIKE $1 OR raw_text ILIKE $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.Query(ctx, sql, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("query raw_content: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			id          uuid.UUID
			title       string
			description string
			rawText     string
			contentType string
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &title, &description, &rawText, &contentType, &createdAt); err != nil {
			return nil, fmt.Errorf("scan raw_content row: %w", err)
		}
		out = append(out, domain.Candidate{
			ID:          id.String(),
			Title:       title,
			Description: description,
			ContentType: domain.ContentType(contentType),
			CreatedAt:   createdAt,
			MatchText:   title + " " + rawText,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate raw_content rows: %w", err)
	}
	return out, nil
}

// SearchLearningPaths matches the query against the request prompt and title.
// Scoring runs against the request prompt only.
func (r *Repo) SearchLearningPaths(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	const sql = `
SELECT id, COALESCE(title, ''), COALESCE(description, ''), request_prompt, created_at
FROM learning_paths
WHERE status = 'active' AND (request_prompt ILIKE $1 OR title ILIKE $1)
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.Query(ctx, sql, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("query learning_paths: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			id          uuid.UUID
			title       string
			description string
			prompt      string
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &title, &description, &prompt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan learning_paths row: %w", err)
		}
		if title == "" {
			title = "Learning Path"
		}
		if description == "" {
			description = prompt
		}
		out = append(out, domain.Candidate{
			ID:          id.String(),
			Title:       title,
			Description: description,
			ContentType: domain.ContentLearningPath,
			CreatedAt:   createdAt,
			MatchText:   prompt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate learning_paths rows: %w", err)
	}
	return out, nil
}

// SearchFlashcardSets matches the query against the set topic.
func (r *Repo) SearchFlashcardSets(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	const sql = `
SELECT id, topic, num_cards, created_at
FROM flashcard_sets
WHERE topic ILIKE $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.db.Query(ctx, sql, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("query flashcard_sets: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			id        uuid.UUID
			topic     string
			numCards  int
			createdAt time.Time
		)
		if err := rows.Scan(&id, &topic, &numCards, &createdAt); err != nil {
			return nil, fmt.Errorf("scan flashcard_sets row: %w", err)
		}
		out = append(out, domain.Candidate{
			ID:          id.String(),
			Title:       topic + " Flashcards",
			Description: fmt.Sprintf("%d flashcards for %s", numCards, topic),
			ContentType: domain.ContentFlashcardSet,
			CreatedAt:   createdAt,
			MatchText:   topic,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flashcard_sets rows: %w", err)
	}
	return out, nil
}

// SearchSummaries matches the query against the summary text. The title comes
// from the summarized source when one is linked.
func (r *Repo) SearchSummaries(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	const sql = `
SELECT s.id, s.summary_text, COALESCE(c.title, ''), s.created_at
FROM summaries s
LEFT JOIN raw_content c ON c.id = s.original_content_id
WHERE s.summary_text ILIKE $1
ORDER BY s.created_at DESC
LIMIT $2`

	rows, err := r.db.Query(ctx, sql, likePattern(query), limit)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			id          uuid.UUID
			summaryText string
			srcTitle    string
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &summaryText, &srcTitle, &createdAt); err != nil {
			return nil, fmt.Errorf("scan summaries row: %w", err)
		}
		title := srcTitle
		if title == "" {
			title = "Content Summary"
		}
		out = append(out, domain.Candidate{
			ID:          id.String(),
			Title:       title,
			Description: snippet(summaryText),
			ContentType: domain.ContentSummary,
			CreatedAt:   createdAt,
			MatchText:   summaryText,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries rows: %w", err)
	}
	return out, nil
}

// InsertSummary stores a generated summary and returns its id.
func (r *Repo) InsertSummary(ctx context.Context, rec domain.SummaryRecord) (string, error) {
	const sql = `
INSERT INTO summaries (id, title, summary_text, length, original_content_id, cost_in_tokens, created_at)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, $6, NOW())`

	id := uuid.New()
	if _, err := r.db.Exec(ctx, sql,
		id, rec.Title, rec.SummaryText, rec.Length, rec.OriginalContentID, rec.CostInTokens,
	); err != nil {
		return "", fmt.Errorf("insert summary: %w", err)
	}
	return id.String(), nil
}

// InsertFlashcardSet stores a generated flashcard set and returns its id.
func (r *Repo) InsertFlashcardSet(ctx context.Context, rec domain.FlashcardSetRecord) (string, error) {
	const sql = `
INSERT INTO flashcard_sets (id, topic, num_cards, cards, cost_in_tokens, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())`

	id := uuid.New()
	if _, err := r.db.Exec(ctx, sql,
		id, rec.Topic, rec.NumCards, rec.Cards, rec.CostInTokens,
	); err != nil {
		return "", fmt.Errorf("insert flashcard set: %w", err)
	}
	return id.String(), nil
}

// InsertLearningPath stores a generated learning path and returns its id.
func (r *Repo) InsertLearningPath(ctx context.Context, rec domain.LearningPathRecord) (string, error) {
	const sql = `
INSERT INTO learning_paths (id, title, description, request_prompt, steps, cost_in_tokens, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, 'active', NOW())`

	id := uuid.New()
	if _, err := r.db.Exec(ctx, sql,
		id, rec.Title, rec.Description, rec.RequestPrompt, rec.Steps, rec.CostInTokens,
	); err != nil {
		return "", fmt.Errorf("insert learning path: %w", err)
	}
	return id.String(), nil
}

// likePattern wraps the query in wildcards, escaping LIKE metacharacters so
// user input cannot inject its own wildcards.
func likePattern(query string) string {
	return "%" + escapeLike(query) + "%"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func snippet(s string) string {
	runes := []rune(s)
	if len(runes) > descriptionSnippetLen {
		runes = runes[:descriptionSnippetLen]
	}
	return string(runes) + "..."
}

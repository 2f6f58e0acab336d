// Package querylog persists the append-only search log, usage analytics and
// popular query counters.
package querylog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// DB defines the database capabilities required by the query log repository.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Compile-time check: pgxpool.Pool satisfies DB.
var _ DB = (*pgxpool.Pool)(nil)

// Repo writes and reads the search query log.
type Repo struct {
	db DB
}

// New creates a query log repository.
func New(db DB) *Repo {
	return &Repo{db: db}
}

// InsertSearch appends a search record and returns its id. Rows are never
// mutated or deleted afterwards.
func (r *Repo) InsertSearch(ctx context.Context, rec domain.SearchRecord) (string, error) {
	const sql = `
INSERT INTO search_log (id, query_text, search_type, results_found, top_results, ai_enhanced_response, cost_in_tokens, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`

	top, err := json.Marshal(rec.TopResults)
	if err != nil {
		return "", fmt.Errorf("marshal top results: %w", err)
	}

	id := uuid.New()
	if _, err := r.db.Exec(ctx, sql,
		id, rec.QueryText, rec.SearchType, rec.ResultsFound, top, rec.AIEnhancedResponse, rec.CostInTokens,
	); err != nil {
		return "", fmt.Errorf("insert search record: %w", err)
	}
	return id.String(), nil
}

// History returns the most recent search records, newest first.
func (r *Repo) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	const sql = `
SELECT id, query_text, search_type, results_found, top_results, ai_enhanced_response, cost_in_tokens, created_at
FROM search_log
ORDER BY created_at DESC
LIMIT $1`

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query search log: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			entry domain.HistoryEntry
			id    uuid.UUID
			top   []byte
		)
		if err := rows.Scan(
			&id, &entry.QueryText, &entry.SearchType, &entry.ResultsFound,
			&top, &entry.AIEnhancedResponse, &entry.CostInTokens, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan search log row: %w", err)
		}
		entry.ID = id.String()
		if len(top) > 0 {
			if err := json.Unmarshal(top, &entry.TopResults); err != nil {
				return nil, fmt.Errorf("unmarshal top results: %w", err)
			}
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search log rows: %w", err)
	}
	return out, nil
}

// BumpPopular increments the counter for a query text, inserting it on first
// sight.
func (r *Repo) BumpPopular(ctx context.Context, queryText string) error {
	const sql = `
INSERT INTO popular_queries (id, query_text, count, updated_at)
VALUES ($1, $2, 1, NOW())
ON CONFLICT (query_text) DO UPDATE SET count = popular_queries.count + 1, updated_at = NOW()`

	if _, err := r.db.Exec(ctx, sql, uuid.New(), queryText); err != nil {
		return fmt.Errorf("bump popular query: %w", err)
	}
	return nil
}

// Popular returns the most frequent query texts, highest count first.
func (r *Repo) Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error) {
	const sql = `
SELECT query_text, count
FROM popular_queries
ORDER BY count DESC
LIMIT $1`

	rows, err := r.db.Query(ctx, sql, limit)
	if err != nil {
		return nil, fmt.Errorf("query popular queries: %w", err)
	}
	defer rows.Close()

	var out []domain.PopularQuery
	for rows.Next() {
		var p domain.PopularQuery
		if err := rows.Scan(&p.QueryText, &p.Count); err != nil {
			return nil, fmt.Errorf("scan popular query row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular query rows: %w", err)
	}
	return out, nil
}

// InsertUsage appends a usage analytics row.
func (r *Repo) InsertUsage(ctx context.Context, rec domain.UsageRecord) error {
	const sql = `
INSERT INTO usage_analytics (id, operation_type, model_used, tokens_consumed, cost_estimate, success, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	if _, err := r.db.Exec(ctx, sql,
		uuid.New(), rec.OperationType, rec.ModelUsed, rec.TokensConsumed, rec.CostEstimate, rec.Success,
	); err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// UsageSince aggregates usage analytics rows created at or after the cutoff.
func (r *Repo) UsageSince(ctx context.Context, since time.Time) (domain.UsageSummary, error) {
	const sql = `
SELECT COUNT(*), COALESCE(SUM(tokens_consumed), 0), COALESCE(SUM(cost_estimate), 0), COUNT(*) FILTER (WHERE NOT success)
FROM usage_analytics
WHERE created_at >= $1`

	var s domain.UsageSummary
	if err := r.db.QueryRow(ctx, sql, since).Scan(
		&s.Operations, &s.TokensConsumed, &s.CostEstimate, &s.Failures,
	); err != nil {
		return domain.UsageSummary{}, fmt.Errorf("aggregate usage: %w", err)
	}
	return s, nil
}

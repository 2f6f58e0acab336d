package querylog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestInsertSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	top := []domain.TopResult{{ID: "a", Title: "Apex Fundamentals", RelevanceScore: 1.5}}
	topJSON := []byte(`[{"id":"a","title":"Apex Fundamentals","relevance_score":1.5}]`)

	mock.ExpectExec("INSERT INTO search_log").
		WithArgs(pgxmock.AnyArg(), "apex", "hybrid", 7, topJSON, "Great results.", 512).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.InsertSearch(context.Background(), domain.SearchRecord{
		QueryText:          "apex",
		SearchType:         "hybrid",
		ResultsFound:       7,
		TopResults:         top,
		AIEnhancedResponse: "Great results.",
		CostInTokens:       512,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected uuid id, got %q", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestHistory(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "query_text", "search_type", "results_found",
		"top_results", "ai_enhanced_response", "cost_in_tokens", "created_at",
	}).AddRow(id, "apex", "keyword", 3, []byte(`[{"id":"a","title":"T","relevance_score":1.0}]`), "", 0, created)

	mock.ExpectQuery("FROM search_log").
		WithArgs(10).
		WillReturnRows(rows)

	got, err := repo.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].QueryText != "apex" {
		t.Errorf("unexpected query text: %q", got[0].QueryText)
	}
	if len(got[0].TopResults) != 1 || got[0].TopResults[0].RelevanceScore != 1.0 {
		t.Errorf("unexpected top results: %+v", got[0].TopResults)
	}
}

func TestBumpPopular(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("ON CONFLICT \\(query_text\\) DO UPDATE").
		WithArgs(pgxmock.AnyArg(), "apex programming tutorial").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.BumpPopular(context.Background(), "apex programming tutorial"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPopular(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := pgxmock.NewRows([]string{"query_text", "count"}).
		AddRow("apex programming tutorial", int64(120)).
		AddRow("flow builder basics", int64(80))

	mock.ExpectQuery("FROM popular_queries").
		WithArgs(10).
		WillReturnRows(rows)

	got, err := repo.Popular(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Count != 120 {
		t.Errorf("expected highest count first, got %d", got[0].Count)
	}
}

func TestUsageSince(t *testing.T) {
	repo, mock := newMockRepo(t)

	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"count", "sum", "sum", "count"}).
		AddRow(int64(4), int64(2048), 0.55, int64(1))

	mock.ExpectQuery("FROM usage_analytics").
		WithArgs(since).
		WillReturnRows(rows)

	got, err := repo.UsageSince(context.Background(), since)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Operations != 4 || got.TokensConsumed != 2048 || got.Failures != 1 {
		t.Errorf("unexpected summary: %+v", got)
	}
}

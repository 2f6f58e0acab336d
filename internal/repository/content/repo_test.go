package content

import (
	"context"
	"errors"
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

func TestSearchRawContent(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "title", "description", "raw_text", "content_type", "created_at"}).
		AddRow(id, "Apex Fundamentals", "Intro to Apex", "Apex is a strongly typed language", "trailhead_module", created)

	mock.ExpectQuery("FROM raw_content").
		WithArgs("%apex%", 5).
		WillReturnRows(rows)

	got, err := repo.SearchRawContent(context.Background(), "apex", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}

	c := got[0]
	if c.ID != id.String() {
		t.Errorf("expected id %s, got %s", id, c.ID)
	}
	if c.ContentType != domain.ContentTrailheadModule {
		t.Errorf("expected trailhead_module, got %s", c.ContentType)
	}
	if c.MatchText != "Apex Fundamentals Apex is a strongly typed language" {
		t.Errorf("unexpected match text: %q", c.MatchText)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSearchRawContent_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM raw_content").
		WithArgs("%apex%", 5).
		WillReturnError(errors.New("connection refused"))

	if _, err := repo.SearchRawContent(context.Background(), "apex", 5); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchLearningPaths_Fallbacks(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	created := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "title", "description", "request_prompt", "created_at"}).
		AddRow(id, "", "", "become a salesforce admin", created)

	mock.ExpectQuery("FROM learning_paths").
		WithArgs("%admin%", 5).
		WillReturnRows(rows)

	got, err := repo.SearchLearningPaths(context.Background(), "admin", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Title != "Learning Path" {
		t.Errorf("expected fallback title, got %q", got[0].Title)
	}
	if got[0].Description != "become a salesforce admin" {
		t.Errorf("expected prompt as fallback description, got %q", got[0].Description)
	}
	if got[0].MatchText != "become a salesforce admin" {
		t.Errorf("expected prompt as match text, got %q", got[0].MatchText)
	}
}

func TestSearchFlashcardSets(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "topic", "num_cards", "created_at"}).
		AddRow(id, "Apex Triggers", 12, time.Now().UTC())

	mock.ExpectQuery("FROM flashcard_sets").
		WithArgs("%triggers%", 5).
		WillReturnRows(rows)

	got, err := repo.SearchFlashcardSets(context.Background(), "triggers", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Title != "Apex Triggers Flashcards" {
		t.Errorf("unexpected title: %q", got[0].Title)
	}
	if got[0].Description != "12 flashcards for Apex Triggers" {
		t.Errorf("unexpected description: %q", got[0].Description)
	}
	if got[0].ContentType != domain.ContentFlashcardSet {
		t.Errorf("unexpected content type: %s", got[0].ContentType)
	}
}

func TestSearchSummaries_FallbackTitle(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "summary_text", "title", "created_at"}).
		AddRow(id, "Flow Builder automates business processes.", "", time.Now().UTC())

	mock.ExpectQuery("FROM summaries").
		WithArgs("%flow%", 5).
		WillReturnRows(rows)

	got, err := repo.SearchSummaries(context.Background(), "flow", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(got))
	}
	if got[0].Title != "Content Summary" {
		t.Errorf("expected fallback title, got %q", got[0].Title)
	}
	if got[0].Description != "Flow Builder automates business processes...." {
		t.Errorf("unexpected snippet: %q", got[0].Description)
	}
}

func TestInsertFlashcardSet(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO flashcard_sets").
		WithArgs(pgxmock.AnyArg(), "Apex Triggers", 10, []byte(`[]`), 420).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.InsertFlashcardSet(context.Background(), domain.FlashcardSetRecord{
		Topic:        "Apex Triggers",
		NumCards:     10,
		Cards:        []byte(`[]`),
		CostInTokens: 420,
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

func TestLikePattern_EscapesMetacharacters(t *testing.T) {
	got := likePattern(`50%_off\now`)
	want := `%50\%\_off\\now%`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSnippet_Truncates(t *testing.T) {
	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'a')
	}
	got := snippet(string(long))
	if len([]rune(got)) != descriptionSnippetLen+3 {
		t.Errorf("expected %d runes, got %d", descriptionSnippetLen+3, len([]rune(got)))
	}
}

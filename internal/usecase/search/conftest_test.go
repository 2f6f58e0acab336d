package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
)

type mockContent struct {
	rawContent    []domain.Candidate
	learningPaths []domain.Candidate
	flashcardSets []domain.Candidate
	summaries     []domain.Candidate

	rawErr   error
	pathsErr error
	cardsErr error
	sumsErr  error
}

func (m *mockContent) SearchRawContent(_ context.Context, _ string, _ int) ([]domain.Candidate, error) {
	return m.rawContent, m.rawErr
}

func (m *mockContent) SearchLearningPaths(_ context.Context, _ string, _ int) ([]domain.Candidate, error) {
	return m.learningPaths, m.pathsErr
}

func (m *mockContent) SearchFlashcardSets(_ context.Context, _ string, _ int) ([]domain.Candidate, error) {
	return m.flashcardSets, m.cardsErr
}

func (m *mockContent) SearchSummaries(_ context.Context, _ string, _ int) ([]domain.Candidate, error) {
	return m.summaries, m.sumsErr
}

// mockQueryLog records appended rows and signals when the background write
// lands.
type mockQueryLog struct {
	mu       sync.Mutex
	searches []domain.SearchRecord
	populars []string
	usages   []domain.UsageRecord
	done     chan struct{}
}

func newMockQueryLog() *mockQueryLog {
	return &mockQueryLog{done: make(chan struct{}, 8)}
}

func (m *mockQueryLog) InsertSearch(_ context.Context, rec domain.SearchRecord) (string, error) {
	m.mu.Lock()
	m.searches = append(m.searches, rec)
	m.mu.Unlock()
	m.done <- struct{}{}
	return "test-id", nil
}

func (m *mockQueryLog) BumpPopular(_ context.Context, queryText string) error {
	m.mu.Lock()
	m.populars = append(m.populars, queryText)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *mockQueryLog) InsertUsage(_ context.Context, rec domain.UsageRecord) error {
	m.mu.Lock()
	m.usages = append(m.usages, rec)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

// waitWrites blocks until n background log writes landed.
func (m *mockQueryLog) waitWrites(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-m.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for log write %d of %d", i+1, n)
		}
	}
}

type mockHistory struct {
	entries []domain.HistoryEntry
	popular []domain.PopularQuery
	err     error
}

func (m *mockHistory) History(_ context.Context, _ int) ([]domain.HistoryEntry, error) {
	return m.entries, m.err
}

func (m *mockHistory) Popular(_ context.Context, _ int) ([]domain.PopularQuery, error) {
	return m.popular, m.err
}

type stubEnhancer struct {
	result domain.Enhancement
	err    error
	calls  int
}

func (s *stubEnhancer) Enhance(_ context.Context, _ domain.EnhancementInput) (domain.Enhancement, error) {
	s.calls++
	return s.result, s.err
}

func testConfig() Config {
	return Config{
		PerSourceLimit:       5,
		SourceTimeout:        time.Second,
		LogTimeout:           time.Second,
		CostPerMillionTokens: 0.27,
		ModelUsed:            "deepseek-chat",
	}
}

func newTestService(content ContentSource, log QueryLog, enhancer domain.Enhancer) *Service {
	return New(content, log, &mockHistory{}, enhancer, testConfig(), zap.NewNop())
}

func candidate(id, title, matchText string, ct domain.ContentType) domain.Candidate {
	return domain.Candidate{
		ID:          id,
		Title:       title,
		Description: title,
		ContentType: ct,
		MatchText:   matchText,
	}
}

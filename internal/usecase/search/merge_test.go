package search

import (
	"testing"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/result"
)

func TestScoreAndMerge_OrdersByScoreDescending(t *testing.T) {
	sources := []domain.Source{domain.SourceRawContent, domain.SourceSummaries}
	lists := [][]domain.Candidate{
		{
			candidate("raw-1", "Flowcharts", "flowcharts only", domain.ContentTrailheadModule),
			candidate("raw-2", "Flow Builder", "flow builder", domain.ContentTrailheadModule),
		},
		{
			candidate("sum-1", "Unrelated", "nothing", domain.ContentSummary),
		},
	}

	merged := scoreAndMerge("flow", sources, lists, 10)

	want := []string{"raw-2", "raw-1", "sum-1"}
	for i, id := range want {
		if merged[i].ID() != id {
			t.Errorf("position %d: expected %s, got %s", i, id, merged[i].ID())
		}
	}
	if merged[0].Score() != 1.5 || merged[1].Score() != 1.0 || merged[2].Score() != 0 {
		t.Errorf("unexpected scores: %v %v %v", merged[0].Score(), merged[1].Score(), merged[2].Score())
	}
}

func TestScoreAndMerge_TruncatesAfterSort(t *testing.T) {
	sources := []domain.Source{domain.SourceRawContent, domain.SourceSummaries}
	lists := [][]domain.Candidate{
		{candidate("raw-1", "Weak", "flowing text", domain.ContentTrailheadModule)},
		{candidate("sum-1", "Strong", "flow basics", domain.ContentSummary)},
	}

	merged := scoreAndMerge("flow", sources, lists, 1)

	if len(merged) != 1 {
		t.Fatalf("expected 1 result, got %d", len(merged))
	}
	if merged[0].ID() != "sum-1" {
		t.Errorf("truncation must keep the best hit, got %s", merged[0].ID())
	}
}

func TestScoreAndMerge_EmptyListsYieldEmpty(t *testing.T) {
	sources := domain.Sources()
	lists := make([][]domain.Candidate, len(sources))

	merged := scoreAndMerge("flow", sources, lists, 10)
	if len(merged) != 0 {
		t.Fatalf("expected no results, got %d", len(merged))
	}
}

func TestTopResults_CapsAtFive(t *testing.T) {
	var results []result.Result
	for i := 0; i < 7; i++ {
		results = append(results, result.FromCandidate(
			candidate("id", "Title", "", domain.ContentTrailheadModule),
			domain.SourceRawContent, 1.0))
	}

	top := topResults(results)
	if len(top) != 5 {
		t.Fatalf("expected 5 top results, got %d", len(top))
	}
	if top[0].RelevanceScore != 1.0 {
		t.Errorf("expected score carried through, got %v", top[0].RelevanceScore)
	}
}

func TestContentSources_DistinctFirstSeen(t *testing.T) {
	results := []result.Result{
		result.FromCandidate(candidate("a", "A", "", domain.ContentSummary), domain.SourceSummaries, 1),
		result.FromCandidate(candidate("b", "B", "", domain.ContentTrailheadModule), domain.SourceRawContent, 1),
		result.FromCandidate(candidate("c", "C", "", domain.ContentSummary), domain.SourceSummaries, 1),
	}

	got := contentSources(results)
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct types, got %d", len(got))
	}
	if got[0] != domain.ContentSummary || got[1] != domain.ContentTrailheadModule {
		t.Errorf("unexpected order: %v", got)
	}
}

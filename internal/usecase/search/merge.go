package search

import (
	"sort"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/domain/relevance"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/result"
)

// scoreAndMerge attaches relevance scores to candidate lists, concatenates
// them in source order, stable-sorts by score descending and truncates to
// limit. The stable sort keeps insertion order on ties, so equal-scored hits
// rank by their source's position in the fan-out.
func scoreAndMerge(query string, sources []domain.Source, lists [][]domain.Candidate, limit int) []result.Result {
	var merged []result.Result
	for i, src := range sources {
		for _, c := range lists[i] {
			score := relevance.Score(query, c.MatchText)
			merged = append(merged, result.FromCandidate(c, src, score))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score() > merged[j].Score()
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// topResults projects the highest-ranked hits for the query log, capped at
// five. A zero score is logged as 0.5, matching the historical log format.
func topResults(results []result.Result) []domain.TopResult {
	n := len(results)
	if n > 5 {
		n = 5
	}
	top := make([]domain.TopResult, 0, n)
	for _, r := range results[:n] {
		score := r.Score()
		if score == 0 {
			score = 0.5
		}
		top = append(top, domain.TopResult{
			ID:             r.ID(),
			Title:          r.Title(),
			RelevanceScore: score,
		})
	}
	return top
}

// contentSources lists the distinct content types present in the results, in
// first-seen order.
func contentSources(results []result.Result) []domain.ContentType {
	seen := make(map[domain.ContentType]bool, 4)
	var out []domain.ContentType
	for i := range results {
		ct := results[i].ContentType()
		if !seen[ct] {
			seen[ct] = true
			out = append(out, ct)
		}
	}
	return out
}

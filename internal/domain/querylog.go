package domain

import "time"

// TopResult is one of the highest-ranked hits stored alongside a log row.
type TopResult struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevance_score"`
}

// SearchRecord is one append-only search log row.
type SearchRecord struct {
	QueryText          string
	SearchType         string
	ResultsFound       int
	TopResults         []TopResult
	AIEnhancedResponse string
	CostInTokens       int
}

// HistoryEntry is one search log row as returned by the history lookup.
type HistoryEntry struct {
	ID                 string      `json:"id"`
	QueryText          string      `json:"query_text"`
	SearchType         string      `json:"search_type"`
	ResultsFound       int         `json:"results_found"`
	TopResults         []TopResult `json:"top_results"`
	AIEnhancedResponse string      `json:"ai_enhanced_response"`
	CostInTokens       int         `json:"cost_in_tokens"`
	CreatedAt          time.Time   `json:"created_at"`
}

// PopularQuery is a query text with its usage count.
type PopularQuery struct {
	QueryText string `json:"query_text"`
	Count     int64  `json:"count"`
}

// UsageRecord is one LLM usage analytics row.
type UsageRecord struct {
	OperationType  string
	ModelUsed      string
	TokensConsumed int
	CostEstimate   float64
	Success        bool
}

// UsageSummary aggregates usage analytics over a period.
type UsageSummary struct {
	Operations     int64   `json:"operations"`
	TokensConsumed int64   `json:"tokens_consumed"`
	CostEstimate   float64 `json:"cost_estimate"`
	Failures       int64   `json:"failures"`
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// LLM Prometheus metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnhub",
			Name:      "llm_requests_total",
			Help:      "Total number of LLM chat completion requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "learnhub",
			Name:      "llm_request_duration_seconds",
			Help:      "LLM chat completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45, 90},
		},
		[]string{"provider", "model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnhub",
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	LLMErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnhub",
			Name:      "llm_errors_total",
			Help:      "Total LLM errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	LLMBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "learnhub",
			Name:      "llm_budget_tokens_remaining",
			Help:      "Remaining token budget",
		},
		[]string{"provider", "period"},
	)

	EnhancementCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnhub",
			Name:      "enhancement_cache_total",
			Help:      "Search enhancement cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	SearchSourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "learnhub",
			Name:      "search_source_errors_total",
			Help:      "Per-source lookup failures absorbed by the search fan-out",
		},
		[]string{"source"},
	)
)

var llmMetricsRegistered bool

// RegisterLLMMetrics registers Prometheus LLM metrics. Must be called once from main.
func RegisterLLMMetrics() {
	if llmMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(LLMBudgetTokensRemaining)
	prometheus.MustRegister(EnhancementCacheTotal)
	prometheus.MustRegister(SearchSourceErrorsTotal)
	llmMetricsRegistered = true
}

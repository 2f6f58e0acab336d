// Package chi exposes the HTTP API: intelligent search, AI content
// generation, the resource finder and the operational endpoints.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/request"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/result"
	generateuc "github.com/learnhub-cloud/learnhub/internal/usecase/generate"
	healthuc "github.com/learnhub-cloud/learnhub/internal/usecase/health"
	resourcesuc "github.com/learnhub-cloud/learnhub/internal/usecase/resources"
	searchuc "github.com/learnhub-cloud/learnhub/internal/usecase/search"
	usageuc "github.com/learnhub-cloud/learnhub/internal/usecase/usage"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeNotFound         ErrorCode = "not_found"
	CodeQuotaExceeded    ErrorCode = "quota_exceeded"
	CodeProviderError    ErrorCode = "provider_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the usecase services.
type Server struct {
	search        *searchuc.Service
	generate      *generateuc.Service
	resources     *resourcesuc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	limits        request.Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	generate *generateuc.Service,
	resources *resourcesuc.Service,
	usage *usageuc.Service,
	health *healthuc.Service,
	limits request.Limits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		generate:  generate,
		resources: resources,
		usage:     usage,
		health:    health,
		limits:    limits,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, CodeProviderError),
		sentinelHandler(domain.ErrMalformedCompletion, http.StatusBadGateway, CodeProviderError),
	}
	return s
}

// Register mounts all routes on the given router.
func (s *Server) Register(r chirouter.Router) {
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/search", s.IntelligentSearch)
		r.Get("/search/history", s.SearchHistory)
		r.Get("/search/popular", s.PopularSearches)
		r.Post("/summaries", s.CreateSummary)
		r.Post("/flashcards", s.CreateFlashcards)
		r.Post("/learning-paths", s.CreateLearningPath)
		r.Post("/resources", s.FindResources)
		r.Get("/usage", s.GetUsage)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// --- Search ---

type searchRequest struct {
	Query         string   `json:"query"`
	UserContext   string   `json:"user_context"`
	SearchType    string   `json:"search_type"`
	ContentTypes  []string `json:"content_types"`
	Limit         int      `json:"limit"`
	EnhanceWithAI *bool    `json:"enhance_with_ai"`
}

type searchResultItem struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	ContentType    string  `json:"content_type"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}

type searchResults struct {
	Query               string             `json:"query"`
	TotalResults        int                `json:"total_results"`
	Results             []searchResultItem `json:"results"`
	AIEnhancedResponse  string             `json:"ai_enhanced_response"`
	Recommendations     []string           `json:"recommendations"`
	RelatedTopics       []string           `json:"related_topics"`
	LearningSuggestions []string           `json:"learning_suggestions"`
}

type searchMetadata struct {
	SearchedAt     time.Time `json:"searched_at"`
	SearchType     string    `json:"search_type"`
	TokensUsed     int       `json:"tokens_used"`
	EstimatedCost  float64   `json:"estimated_cost"`
	ContentSources []string  `json:"content_sources"`
}

type searchResponse struct {
	Success       bool           `json:"success"`
	SearchResults searchResults  `json:"search_results"`
	Metadata      searchMetadata `json:"metadata"`
}

// IntelligentSearch handles POST /api/v1/search.
func (s *Server) IntelligentSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	enhance := true
	if body.EnhanceWithAI != nil {
		enhance = *body.EnhanceWithAI
	}

	req, err := request.New(
		body.Query, body.SearchType, body.ContentTypes,
		body.Limit, body.UserContext, enhance, s.limits,
	)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := s.search.Search(r.Context(), &req)

	items := make([]searchResultItem, len(resp.Results))
	for i := range resp.Results {
		items[i] = resultToItem(&resp.Results[i])
	}

	sources := make([]string, len(resp.ContentSources))
	for i, ct := range resp.ContentSources {
		sources[i] = string(ct)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Success: true,
		SearchResults: searchResults{
			Query:               resp.Query,
			TotalResults:        resp.TotalResults,
			Results:             items,
			AIEnhancedResponse:  resp.AIEnhancedResponse,
			Recommendations:     orEmpty(resp.Recommendations),
			RelatedTopics:       orEmpty(resp.RelatedTopics),
			LearningSuggestions: orEmpty(resp.LearningSuggestions),
		},
		Metadata: searchMetadata{
			SearchedAt:     resp.SearchedAt,
			SearchType:     string(resp.SearchType),
			TokensUsed:     resp.TokensUsed,
			EstimatedCost:  resp.EstimatedCost,
			ContentSources: sources,
		},
	})
}

// SearchHistory handles GET /api/v1/search/history.
func (s *Server) SearchHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	entries, err := s.search.History(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"search_history": entries,
		"count":          len(entries),
	})
}

// PopularSearches handles GET /api/v1/search/popular.
func (s *Server) PopularSearches(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r, defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	queries, err := s.search.Popular(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if queries == nil {
		queries = []domain.PopularQuery{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"popular_queries": queries,
		"count":           len(queries),
	})
}

// --- Generation ---

type summarizeRequest struct {
	Content       string `json:"content"`
	ContentTitle  string `json:"content_title"`
	SummaryLength string `json:"summary_length"`
	FocusArea     string `json:"focus_area"`
}

type generationMetadata struct {
	TokensUsed    int     `json:"tokens_used"`
	EstimatedCost float64 `json:"estimated_cost"`
	ModelUsed     string  `json:"model_used"`
}

// CreateSummary handles POST /api/v1/summaries.
func (s *Server) CreateSummary(w http.ResponseWriter, r *http.Request) {
	var body summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	summary, err := s.generate.Summarize(r.Context(), generateuc.SummarizeInput{
		Content: body.Content,
		Title:   body.ContentTitle,
		Length:  body.SummaryLength,
		Focus:   body.FocusArea,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": map[string]any{
			"id":             summary.ID,
			"summary_text":   summary.Text,
			"key_concepts":   summary.KeyConcepts,
			"summary_length": summary.Length,
		},
		"metadata": generationMetadata{
			TokensUsed:    summary.TokensUsed,
			EstimatedCost: summary.EstimatedCost,
			ModelUsed:     summary.ModelUsed,
		},
	})
}

type flashcardsRequest struct {
	Content            string `json:"content"`
	Topic              string `json:"topic"`
	NumFlashcards      int    `json:"num_flashcards"`
	CertificationFocus string `json:"certification_focus"`
}

// CreateFlashcards handles POST /api/v1/flashcards.
func (s *Server) CreateFlashcards(w http.ResponseWriter, r *http.Request) {
	var body flashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	set, err := s.generate.GenerateFlashcards(r.Context(), generateuc.FlashcardsInput{
		Content:       body.Content,
		Topic:         body.Topic,
		NumCards:      body.NumFlashcards,
		Certification: body.CertificationFocus,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"flashcard_set": map[string]any{
			"id":         set.ID,
			"topic":      set.Topic,
			"num_cards":  len(set.Flashcards),
			"flashcards": set.Flashcards,
		},
		"metadata": generationMetadata{
			TokensUsed:    set.TokensUsed,
			EstimatedCost: set.EstimatedCost,
			ModelUsed:     set.ModelUsed,
		},
	})
}

type learningPathRequest struct {
	Prompt            string `json:"prompt"`
	ExistingKnowledge string `json:"existing_knowledge"`
	LearningStyle     string `json:"learning_style"`
	TimeCommitment    string `json:"time_commitment"`
}

// CreateLearningPath handles POST /api/v1/learning-paths.
func (s *Server) CreateLearningPath(w http.ResponseWriter, r *http.Request) {
	var body learningPathRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	path, err := s.generate.GenerateLearningPath(r.Context(), generateuc.LearningPathInput{
		Prompt:            body.Prompt,
		ExistingKnowledge: body.ExistingKnowledge,
		LearningStyle:     body.LearningStyle,
		TimeCommitment:    body.TimeCommitment,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"learning_path": path,
		"metadata": generationMetadata{
			TokensUsed:    path.TokensUsed,
			EstimatedCost: path.EstimatedCost,
			ModelUsed:     path.ModelUsed,
		},
	})
}

// --- Resource finder ---

type resourcesRequest struct {
	Product      string `json:"product"`
	Purpose      string `json:"purpose"`
	ForceRefresh bool   `json:"force_refresh"`
}

// FindResources handles POST /api/v1/resources.
func (s *Server) FindResources(w http.ResponseWriter, r *http.Request) {
	var body resourcesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := s.resources.Find(r.Context(), resourcesuc.Input{
		Product:      body.Product,
		Purpose:      body.Purpose,
		ForceRefresh: body.ForceRefresh,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"resources":         res.Resources,
		"trending_insights": res.TrendingInsights,
		"cached":            res.Cached,
		"fallback":          res.Fallback,
		"metadata": map[string]any{
			"tokens_used":    res.TokensUsed,
			"estimated_cost": res.EstimatedCost,
		},
	})
}

// --- Usage ---

type usageResponse struct {
	Period      string    `json:"period"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Usage       struct {
		Operations     int64   `json:"operations"`
		TokensConsumed int64   `json:"tokens_consumed"`
		CostEstimate   float64 `json:"cost_estimate"`
		Failures       int64   `json:"failures"`
	} `json:"usage"`
	Budget struct {
		TokensLimit     int64 `json:"tokens_limit"`
		TokensUsed      int64 `json:"tokens_used"`
		TokensRemaining int64 `json:"tokens_remaining"`
		IsExhausted     bool  `json:"is_exhausted"`
	} `json:"budget"`
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	report, err := s.usage.GetReport(r.Context(), period)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var resp usageResponse
	resp.Period = string(report.Period)
	resp.PeriodStart = report.PeriodStart
	resp.PeriodEnd = report.PeriodEnd
	resp.Usage.Operations = report.Operations
	resp.Usage.TokensConsumed = report.TokensConsumed
	resp.Usage.CostEstimate = report.CostEstimate
	resp.Usage.Failures = report.Failures
	resp.Budget.TokensLimit = report.TokensLimit
	resp.Budget.TokensUsed = report.TokensUsed
	resp.Budget.TokensRemaining = report.TokensRemaining
	resp.Budget.IsExhausted = report.Exhausted

	writeJSON(w, http.StatusOK, resp)
}

// --- Operational ---

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

func resultToItem(res *result.Result) searchResultItem {
	return searchResultItem{
		ID:             res.ID(),
		Title:          res.Title(),
		Description:    res.Description(),
		ContentType:    string(res.ContentType()),
		Source:         string(res.Source()),
		RelevanceScore: res.Score(),
	}
}

// orEmpty keeps list fields as JSON arrays, never null.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func limitParam(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.New("limit must be a positive integer")
	}
	if limit > max {
		limit = max
	}
	return limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals. Validation errors keep their detail: they are built
// from client input only.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidQuery) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrQuotaExceeded,
		domain.ErrProviderError,
		domain.ErrMalformedCompletion,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

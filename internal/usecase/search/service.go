// Package search implements the intelligent search pipeline: concurrent
// collection fan-out, relevance scoring, merge, optional AI enhancement and
// the fire-and-forget query log.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/learnhub-cloud/learnhub/internal/domain"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/request"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/result"
	"github.com/learnhub-cloud/learnhub/internal/domain/search/suggest"
	"github.com/learnhub-cloud/learnhub/internal/metrics"
)

// FallbackEnhancement is returned when AI enhancement was requested but could
// not be produced. The search itself still succeeds.
const FallbackEnhancement = "Search completed, but AI enhancement unavailable."

// Config holds search pipeline settings.
type Config struct {
	PerSourceLimit       int
	SourceTimeout        time.Duration
	LogTimeout           time.Duration
	CostPerMillionTokens float64
	ModelUsed            string
}

// Service runs intelligent searches.
type Service struct {
	content  ContentSource
	log      QueryLog
	history  HistoryReader
	enhancer domain.Enhancer
	cfg      Config
	logger   *zap.Logger
}

// New creates a search service. enhancer may be nil when no AI provider is
// configured; enhancement requests then degrade to the fallback response.
func New(
	content ContentSource,
	log QueryLog,
	history HistoryReader,
	enhancer domain.Enhancer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		content:  content,
		log:      log,
		history:  history,
		enhancer: enhancer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Response is the complete outcome of one search.
type Response struct {
	Query               string
	SearchType          request.Type
	Results             []result.Result
	TotalResults        int
	AIEnhancedResponse  string
	Recommendations     []string
	RelatedTopics       []string
	LearningSuggestions []string
	TokensUsed          int
	EstimatedCost       float64
	ContentSources      []domain.ContentType
	SearchedAt          time.Time
}

// Search executes the full pipeline. Source failures degrade to empty lists
// and enhancement failures degrade to the fallback response; the only error
// surface left is context cancellation, which is reported by empty results.
func (s *Service) Search(ctx context.Context, req *request.Request) Response {
	lists := s.fanOut(ctx, req)

	results := scoreAndMerge(req.Query(), req.Sources(), lists, req.Limit())

	enhanced, recommendations, tokens := s.enhance(ctx, req, results)

	s.appendLog(ctx, req, results, enhanced, tokens)

	return Response{
		Query:               req.Query(),
		SearchType:          req.SearchType(),
		Results:             results,
		TotalResults:        len(results),
		AIEnhancedResponse:  enhanced,
		Recommendations:     recommendations,
		RelatedTopics:       suggest.RelatedTopics(req.Query(), results),
		LearningSuggestions: suggest.LearningSuggestions(req.Query(), results),
		TokensUsed:          tokens,
		EstimatedCost:       s.cost(tokens),
		ContentSources:      contentSources(results),
		SearchedAt:          time.Now().UTC(),
	}
}

// History returns recent query log rows, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	return s.history.History(ctx, limit)
}

// Popular returns the most frequent query texts.
func (s *Service) Popular(ctx context.Context, limit int) ([]domain.PopularQuery, error) {
	return s.history.Popular(ctx, limit)
}

// fanOut runs one lookup goroutine per selected source. A failed or timed-out
// source leaves its slot empty; the search never aborts on lookup errors.
func (s *Service) fanOut(ctx context.Context, req *request.Request) [][]domain.Candidate {
	sources := req.Sources()
	lists := make([][]domain.Candidate, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
			defer cancel()

			cands, err := s.lookup(cctx, src, req.Query())
			if err != nil {
				metrics.SearchSourceErrorsTotal.WithLabelValues(string(src)).Inc()
				s.logger.Warn("Source lookup failed",
					zap.String("source", string(src)),
					zap.String("query", req.Query()),
					zap.Error(err),
				)
				return nil
			}
			lists[i] = cands
			return nil
		})
	}
	_ = g.Wait() // goroutines absorb their own errors

	return lists
}

func (s *Service) lookup(ctx context.Context, src domain.Source, query string) ([]domain.Candidate, error) {
	switch src {
	case domain.SourceRawContent:
		return s.content.SearchRawContent(ctx, query, s.cfg.PerSourceLimit)
	case domain.SourceLearningPaths:
		return s.content.SearchLearningPaths(ctx, query, s.cfg.PerSourceLimit)
	case domain.SourceFlashcardSets:
		return s.content.SearchFlashcardSets(ctx, query, s.cfg.PerSourceLimit)
	case domain.SourceSummaries:
		return s.content.SearchSummaries(ctx, query, s.cfg.PerSourceLimit)
	}
	return nil, nil
}

// enhance calls the AI enhancer when requested. Any failure degrades to the
// fixed fallback sentence with empty recommendations and zero tokens.
func (s *Service) enhance(ctx context.Context, req *request.Request, results []result.Result) (string, []string, int) {
	if !req.Enhance() || len(results) == 0 {
		return "", nil, 0
	}
	if s.enhancer == nil {
		return FallbackEnhancement, nil, 0
	}

	enh, err := s.enhancer.Enhance(ctx, enhancementInput(req, results))
	if err != nil {
		s.logger.Warn("Enhancement failed",
			zap.String("query", req.Query()),
			zap.Error(err),
		)
		return FallbackEnhancement, nil, 0
	}
	return enh.Response, enh.Recommendations, enh.Tokens
}

func enhancementInput(req *request.Request, results []result.Result) domain.EnhancementInput {
	summaries := make([]domain.ResultSummary, 0, len(results))
	for i := range results {
		summaries = append(summaries, domain.ResultSummary{
			ID:          results[i].ID(),
			Title:       results[i].Title(),
			Description: results[i].Description(),
			ContentType: results[i].ContentType(),
			Score:       results[i].Score(),
		})
	}
	return domain.EnhancementInput{
		Query:       req.Query(),
		UserContext: req.UserContext(),
		Results:     summaries,
	}
}

// appendLog writes the query log, popularity counter and usage analytics in
// the background. Detached from request cancellation so a client disconnect
// after the response does not lose the record.
func (s *Service) appendLog(
	ctx context.Context, req *request.Request,
	results []result.Result, enhanced string, tokens int,
) {
	logCtx := context.WithoutCancel(ctx)

	go func() {
		cctx, cancel := context.WithTimeout(logCtx, s.cfg.LogTimeout)
		defer cancel()

		rec := domain.SearchRecord{
			QueryText:          req.Query(),
			SearchType:         string(req.SearchType()),
			ResultsFound:       len(results),
			TopResults:         topResults(results),
			AIEnhancedResponse: enhanced,
			CostInTokens:       tokens,
		}
		if _, err := s.log.InsertSearch(cctx, rec); err != nil {
			s.logger.Warn("Failed to append search record", zap.Error(err))
		}

		if err := s.log.BumpPopular(cctx, req.Query()); err != nil {
			s.logger.Warn("Failed to bump popular query", zap.Error(err))
		}

		if tokens > 0 {
			usage := domain.UsageRecord{
				OperationType:  "search",
				ModelUsed:      s.cfg.ModelUsed,
				TokensConsumed: tokens,
				CostEstimate:   s.cost(tokens),
				Success:        true,
			}
			if err := s.log.InsertUsage(cctx, usage); err != nil {
				s.logger.Warn("Failed to append usage record", zap.Error(err))
			}
		}
	}()
}

func (s *Service) cost(tokens int) float64 {
	return float64(tokens) / 1_000_000 * s.cfg.CostPerMillionTokens
}

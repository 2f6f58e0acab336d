// Package resources implements the resource finder: live web search context
// plus trending-certification data feed an LLM curation prompt.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/db"
	"github.com/learnhub-cloud/learnhub/internal/domain"
)

// PurposeCertificationPrep marks certification-focused requests; they always
// get Agentforce prioritization.
const PurposeCertificationPrep = "certification_prep"

var cacheKeyPrefix = domain.KeyPrefix + "resources:"

// Config holds resource finder settings.
type Config struct {
	Model          string
	CostPerMillion float64
	CacheTTL       time.Duration
}

// Service finds curated learning resources.
type Service struct {
	completer domain.Completer
	searcher  WebSearcher
	cache     store
	usage     UsageLog
	cfg       Config
	logger    *zap.Logger
}

// New creates a resource finder. cache may be nil to disable result caching.
func New(
	completer domain.Completer,
	searcher WebSearcher,
	cache store,
	usage UsageLog,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		completer: completer,
		searcher:  searcher,
		cache:     cache,
		usage:     usage,
		cfg:       cfg,
		logger:    logger,
	}
}

// Input are the parameters for one resource lookup.
type Input struct {
	Product      string
	Purpose      string
	ForceRefresh bool
}

// Result is a curated resource list with trending context.
type Result struct {
	Resources        string
	TrendingInsights string
	TokensUsed       int
	EstimatedCost    float64
	Cached           bool
	Fallback         bool
}

// cachedResult is the stored JSON shape. Token counts are not cached: a hit
// consumes no tokens.
type cachedResult struct {
	Resources        string `json:"resources"`
	TrendingInsights string `json:"trending_insights"`
}

// Find returns curated learning resources for a product and purpose. The
// pipeline never fails outright: search context degrades to empty, and a
// failed or unparseable curation degrades to fixed fallback resources.
func (s *Service) Find(ctx context.Context, in Input) (Result, error) {
	product := strings.TrimSpace(in.Product)
	purpose := strings.TrimSpace(in.Purpose)
	if product == "" || purpose == "" {
		return Result{}, fmt.Errorf("%w: both product and purpose are required", domain.ErrInvalidQuery)
	}

	key := cacheKey(product, purpose)
	if !in.ForceRefresh {
		if cached, ok := s.getFromCache(ctx, key); ok {
			return Result{
				Resources:        cached.Resources,
				TrendingInsights: cached.TrendingInsights,
				Cached:           true,
			}, nil
		}
	}

	trending := s.trendingData(ctx)
	searchResults := s.searchResources(ctx, product, purpose, trending)

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		System:      curatorSystemPrompt,
		Prompt:      buildCuratorPrompt(product, purpose, trending, searchResults, agentforceRelevant(product, purpose)),
		Model:       s.cfg.Model,
		MaxTokens:   3000,
		Temperature: 0.3,
	})
	if err != nil {
		s.logger.Warn("Resource curation failed",
			zap.String("product", product),
			zap.String("purpose", purpose),
			zap.Error(err),
		)
		return Result{
			Resources:        genericFallbackResources,
			TrendingInsights: "Currently experiencing high demand in the Salesforce ecosystem.",
			Fallback:         true,
		}, nil
	}

	out := s.parseCuration(product, purpose, res)
	s.recordUsage(ctx, res.TotalTokens, out.EstimatedCost)
	s.putToCache(ctx, key, out)
	return out, nil
}

// parseCuration extracts the curated list from the completion. An unparseable
// answer degrades to product-specific fallback resources, still billed for
// the tokens spent.
func (s *Service) parseCuration(product, purpose string, res domain.CompletionResult) Result {
	out := Result{
		TokensUsed:    res.TotalTokens,
		EstimatedCost: s.cost(res.TotalTokens),
	}

	data, err := domain.ExtractJSON(res.Content)
	if err == nil {
		var parsed struct {
			Resources        string `json:"resources"`
			TrendingInsights string `json:"trending_insights"`
		}
		if uerr := json.Unmarshal(data, &parsed); uerr == nil && parsed.Resources != "" {
			out.Resources = parsed.Resources
			out.TrendingInsights = parsed.TrendingInsights
			return out
		}
	}

	s.logger.Warn("Failed to parse resource curation, using fallback",
		zap.String("product", product),
	)
	out.Resources = fallbackResources(product)
	out.TrendingInsights = fmt.Sprintf(
		"%s is currently trending in the Salesforce ecosystem, particularly for %s purposes.",
		product, purpose,
	)
	out.Fallback = true
	return out
}

// searchResources builds the resource search query, boosted with trending
// keywords when a certification matches the product. Failures degrade to no
// search context.
func (s *Service) searchResources(ctx context.Context, product, purpose string, trending TrendingData) []domain.WebResult {
	query := fmt.Sprintf("Salesforce %s %s resources", product, purpose)
	if agentforceRelevant(product, purpose) {
		query = fmt.Sprintf("Salesforce Agentforce Specialist certification %s resources", product)
	}

	productLower := strings.ToLower(product)
	for _, cert := range trending.Certifications {
		if strings.Contains(strings.ToLower(cert.Name), productLower) {
			query += " " + strings.Join(cert.TrendingKeywords, " ")
			break
		}
	}

	results, err := s.searcher.Search(ctx, query, "web")
	if err != nil {
		s.logger.Warn("Resource search failed",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil
	}
	return results
}

func agentforceRelevant(product, purpose string) bool {
	p := strings.ToLower(product)
	return strings.Contains(p, "agentforce") ||
		strings.Contains(p, "ai") ||
		purpose == PurposeCertificationPrep
}

var cacheKeySpaces = regexp.MustCompile(`\s+`)

func cacheKey(product, purpose string) string {
	normalized := strings.ToLower(product + "_" + purpose)
	return cacheKeyPrefix + cacheKeySpaces.ReplaceAllString(normalized, "_")
}

func (s *Service) getFromCache(ctx context.Context, key string) (cachedResult, bool) {
	if s.cache == nil {
		return cachedResult{}, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Failed to get cached resources", zap.String("key", key), zap.Error(err))
		}
		return cachedResult{}, false
	}
	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		s.logger.Warn("Failed to parse cached resources", zap.String("key", key), zap.Error(err))
		return cachedResult{}, false
	}
	return cached, true
}

func (s *Service) putToCache(ctx context.Context, key string, out Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(cachedResult{
		Resources:        out.Resources,
		TrendingInsights: out.TrendingInsights,
	})
	if err != nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Failed to cache resources", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) recordUsage(ctx context.Context, tokens int, cost float64) {
	err := s.usage.InsertUsage(ctx, domain.UsageRecord{
		OperationType:  "resource_finder",
		ModelUsed:      s.cfg.Model,
		TokensConsumed: tokens,
		CostEstimate:   cost,
		Success:        true,
	})
	if err != nil {
		s.logger.Warn("Failed to append usage record", zap.Error(err))
	}
}

func (s *Service) cost(tokens int) float64 {
	return float64(tokens) / 1_000_000 * s.cfg.CostPerMillion
}

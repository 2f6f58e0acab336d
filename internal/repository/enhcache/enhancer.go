// Package enhcache caches AI enhancement narratives in a key-value store so
// repeated searches do not pay for the same completion twice.
package enhcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/db"
	"github.com/learnhub-cloud/learnhub/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "enh_cache:"

// store is the consumer interface for the enhancement cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEnhancer caches enhancements keyed by query, user context and the
// identity of the result set.
type CachedEnhancer struct {
	inner      domain.Enhancer
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// cacheEntry is the stored JSON shape. Token counts are not cached: a hit
// consumes no tokens.
type cacheEntry struct {
	Response        string   `json:"response"`
	Recommendations []string `json:"recommendations"`
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Enhancer,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEnhancer {
	return &CachedEnhancer{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Enhance returns a cached enhancement or calls the inner enhancer.
// Cache hit: Tokens = 0 (no real tokens consumed).
// Cache miss: full Enhancement from inner.
func (c *CachedEnhancer) Enhance(ctx context.Context, in domain.EnhancementInput) (domain.Enhancement, error) {
	key := c.cacheKey(in)

	if entry, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.Enhancement{
			Response:        entry.Response,
			Recommendations: entry.Recommendations,
		}, nil
	}

	c.incCache("miss")

	enh, err := c.inner.Enhance(ctx, in)
	if err != nil {
		return domain.Enhancement{}, fmt.Errorf("enhance results: %w", err)
	}

	c.putToCache(ctx, key, enh)
	return enh, nil
}

func (c *CachedEnhancer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey hashes the query, the user context and the ordered result ids.
// A different result set for the same query must not reuse the narrative.
func (c *CachedEnhancer) cacheKey(in domain.EnhancementInput) string {
	h := sha256.New()
	h.Write([]byte(in.Query))
	h.Write([]byte{0})
	h.Write([]byte(in.UserContext))
	for _, r := range in.Results {
		h.Write([]byte{0})
		h.Write([]byte(r.ID))
	}
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedEnhancer) getFromCache(ctx context.Context, key string) (cacheEntry, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached enhancement", zap.String("key", key), zap.Error(err))
		}
		return cacheEntry{}, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Failed to parse cached enhancement", zap.String("key", key), zap.Error(err))
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *CachedEnhancer) putToCache(ctx context.Context, key string, enh domain.Enhancement) {
	data, err := json.Marshal(cacheEntry{
		Response:        enh.Response,
		Recommendations: enh.Recommendations,
	})
	if err != nil {
		c.logger.Warn("Failed to encode enhancement", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache enhancement", zap.String("key", key), zap.Error(err))
	}
}

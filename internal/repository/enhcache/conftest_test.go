package enhcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/db"
	"github.com/learnhub-cloud/learnhub/internal/domain"
)

type mockEnhancer struct {
	result domain.Enhancement
	err    error
	calls  int
}

func (m *mockEnhancer) Enhance(_ context.Context, _ domain.EnhancementInput) (domain.Enhancement, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEnhancer(t *testing.T, inner *mockEnhancer) (*CachedEnhancer, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ce := New(inner, ms, time.Hour, nil, zap.NewNop())
	return ce, ms
}

package resources

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/learnhub-cloud/learnhub/internal/db"
	"github.com/learnhub-cloud/learnhub/internal/domain"
)

type mockCompleter struct {
	result domain.CompletionResult
	err    error
	calls  int
	last   domain.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	m.calls++
	m.last = req
	return m.result, m.err
}

type mockSearcher struct {
	results map[string][]domain.WebResult
	err     error
	queries []string
}

func (m *mockSearcher) Search(_ context.Context, query, _ string) ([]domain.WebResult, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

type mockKVStore struct {
	data map[string][]byte
	sets int
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte)}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	m.sets++
	return nil
}

type mockUsageLog struct {
	records []domain.UsageRecord
}

func (m *mockUsageLog) InsertUsage(_ context.Context, rec domain.UsageRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func testConfig() Config {
	return Config{
		Model:          "deepseek-reasoner",
		CostPerMillion: 0.55,
		CacheTTL:       24 * time.Hour,
	}
}

func newTestService(completer *mockCompleter, searcher *mockSearcher, cache store, usage *mockUsageLog) *Service {
	return New(completer, searcher, cache, usage, testConfig(), zap.NewNop())
}

const curationJSON = `{"resources": "### 🔗 Official Resources ⭐\n- [Flow Docs](https://help.salesforce.com)", "trending_insights": "Flow is hot."}`

func TestFind_CuratesAndPersists(t *testing.T) {
	completer := &mockCompleter{result: domain.CompletionResult{
		Content:     curationJSON,
		TotalTokens: 1800,
	}}
	searcher := &mockSearcher{}
	cache := newMockKVStore()
	usage := &mockUsageLog{}
	svc := newTestService(completer, searcher, cache, usage)

	got, err := svc.Find(context.Background(), Input{Product: "Flow", Purpose: "implementation"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Cached || got.Fallback {
		t.Errorf("expected fresh curation, got %+v", got)
	}
	if !strings.Contains(got.Resources, "Flow Docs") {
		t.Errorf("unexpected resources: %q", got.Resources)
	}
	if got.TrendingInsights != "Flow is hot." {
		t.Errorf("unexpected insights: %q", got.TrendingInsights)
	}
	wantCost := 1800.0 / 1_000_000 * 0.55
	if got.EstimatedCost != wantCost {
		t.Errorf("expected cost %v, got %v", wantCost, got.EstimatedCost)
	}

	if completer.last.Model != "deepseek-reasoner" || completer.last.MaxTokens != 3000 || completer.last.Temperature != 0.3 {
		t.Errorf("unexpected completion settings: %+v", completer.last)
	}

	if len(usage.records) != 1 || usage.records[0].OperationType != "resource_finder" {
		t.Errorf("unexpected usage records: %+v", usage.records)
	}
	if cache.sets != 1 {
		t.Errorf("expected curation cached, sets=%d", cache.sets)
	}
}

func TestFind_CacheHitSkipsPipeline(t *testing.T) {
	completer := &mockCompleter{result: domain.CompletionResult{Content: curationJSON, TotalTokens: 1800}}
	searcher := &mockSearcher{}
	cache := newMockKVStore()
	svc := newTestService(completer, searcher, cache, &mockUsageLog{})

	in := Input{Product: "Flow", Purpose: "implementation"}
	if _, err := svc.Find(context.Background(), in); err != nil {
		t.Fatalf("first find failed: %v", err)
	}
	firstCalls := completer.calls

	got, err := svc.Find(context.Background(), in)
	if err != nil {
		t.Fatalf("second find failed: %v", err)
	}
	if !got.Cached {
		t.Error("expected cached result")
	}
	if got.TokensUsed != 0 {
		t.Errorf("cache hit must consume no tokens, got %d", got.TokensUsed)
	}
	if completer.calls != firstCalls {
		t.Errorf("completer must not run on cache hit")
	}
}

func TestFind_ForceRefreshBypassesCache(t *testing.T) {
	completer := &mockCompleter{result: domain.CompletionResult{Content: curationJSON, TotalTokens: 1800}}
	cache := newMockKVStore()
	svc := newTestService(completer, &mockSearcher{}, cache, &mockUsageLog{})

	in := Input{Product: "Flow", Purpose: "implementation"}
	if _, err := svc.Find(context.Background(), in); err != nil {
		t.Fatalf("first find failed: %v", err)
	}

	in.ForceRefresh = true
	got, err := svc.Find(context.Background(), in)
	if err != nil {
		t.Fatalf("refresh find failed: %v", err)
	}
	if got.Cached {
		t.Error("force refresh must not serve from cache")
	}
	if completer.calls != 2 {
		t.Errorf("expected 2 completions, got %d", completer.calls)
	}
}

func TestFind_UnparseableCurationFallsBack(t *testing.T) {
	completer := &mockCompleter{result: domain.CompletionResult{
		Content:     "Here are your resources!",
		TotalTokens: 400,
	}}
	svc := newTestService(completer, &mockSearcher{}, nil, &mockUsageLog{})

	got, err := svc.Find(context.Background(), Input{Product: "Apex", Purpose: "deep_dive"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Fallback {
		t.Error("expected fallback result")
	}
	if !strings.Contains(got.Resources, "[Salesforce Apex Documentation](https://help.salesforce.com)") {
		t.Errorf("expected product-specific fallback, got %q", got.Resources)
	}
	if !strings.Contains(got.TrendingInsights, "Apex is currently trending") {
		t.Errorf("unexpected insights: %q", got.TrendingInsights)
	}
	if got.TokensUsed != 400 {
		t.Errorf("fallback still spends tokens, got %d", got.TokensUsed)
	}
}

func TestFind_CompleterFailureReturnsGenericFallback(t *testing.T) {
	completer := &mockCompleter{err: errors.New("provider down")}
	usage := &mockUsageLog{}
	svc := newTestService(completer, &mockSearcher{}, nil, usage)

	got, err := svc.Find(context.Background(), Input{Product: "Flow", Purpose: "implementation"})
	if err != nil {
		t.Fatalf("pipeline failure must not fail the request: %v", err)
	}
	if !got.Fallback {
		t.Error("expected fallback result")
	}
	if !strings.Contains(got.Resources, "Salesforce Help Documentation") {
		t.Errorf("expected generic fallback, got %q", got.Resources)
	}
	if len(usage.records) != 0 {
		t.Errorf("no usage rows for failed completions, got %+v", usage.records)
	}
}

func TestFind_SearchFailureDegradesToEmptyContext(t *testing.T) {
	completer := &mockCompleter{result: domain.CompletionResult{Content: curationJSON, TotalTokens: 100}}
	searcher := &mockSearcher{err: errors.New("serper down")}
	svc := newTestService(completer, searcher, nil, &mockUsageLog{})

	got, err := svc.Find(context.Background(), Input{Product: "Flow", Purpose: "implementation"})
	if err != nil {
		t.Fatalf("search failure must not fail the request: %v", err)
	}
	if got.Fallback {
		t.Error("curation still runs without search context")
	}
	if !strings.Contains(completer.last.Prompt, "Agentforce Implementation") {
		t.Errorf("prompt must carry default trending topics:\n%s", completer.last.Prompt)
	}
}

func TestFind_ValidatesInput(t *testing.T) {
	svc := newTestService(&mockCompleter{}, &mockSearcher{}, nil, &mockUsageLog{})

	if _, err := svc.Find(context.Background(), Input{Product: "", Purpose: "x"}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("missing product: expected ErrInvalidQuery, got %v", err)
	}
	if _, err := svc.Find(context.Background(), Input{Product: "x", Purpose: "  "}); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("missing purpose: expected ErrInvalidQuery, got %v", err)
	}
}

func TestFind_CertificationPrepBoostsAgentforce(t *testing.T) {
	completer := &mockCompleter{result: domain.CompletionResult{Content: curationJSON}}
	searcher := &mockSearcher{}
	svc := newTestService(completer, searcher, nil, &mockUsageLog{})

	if _, err := svc.Find(context.Background(), Input{Product: "Admin", Purpose: PurposeCertificationPrep}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(completer.last.Prompt, "Agentforce Specialist is the top trending AI certification") {
		t.Errorf("prompt missing Agentforce note:\n%s", completer.last.Prompt)
	}

	var resourceQuery string
	for _, q := range searcher.queries {
		if strings.Contains(q, "resources") && !strings.Contains(q, "2024") {
			resourceQuery = q
		}
	}
	if !strings.Contains(resourceQuery, "Agentforce Specialist certification") {
		t.Errorf("resource query not Agentforce-boosted: %q", resourceQuery)
	}
}

func TestCacheKey_NormalizesWhitespace(t *testing.T) {
	got := cacheKey("Platform Developer I", "certification prep")
	want := "learnhub:resources:platform_developer_i_certification_prep"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMineTopics_CountsAndCaps(t *testing.T) {
	text := strings.Repeat("Agentforce ", 15) + "Einstein einstein Apex"
	topics := mineTopics(text)

	if len(topics) != 3 {
		t.Fatalf("expected 3 topics, got %d", len(topics))
	}
	if topics[0].Topic != "Agentforce" || topics[0].TrendScore != 100 {
		t.Errorf("expected Agentforce capped at 100, got %+v", topics[0])
	}
	if topics[1].Topic != "Einstein" || topics[1].TrendScore != 20 {
		t.Errorf("expected Einstein score 20, got %+v", topics[1])
	}
}

func TestMineTopics_NoMatches(t *testing.T) {
	if topics := mineTopics("nothing relevant here"); topics != nil {
		t.Errorf("expected nil, got %v", topics)
	}
}

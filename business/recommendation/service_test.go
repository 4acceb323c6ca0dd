package recommendation

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"marketRecs/domain"
)

// ---- fakes ----

type fakeCache struct {
	entries  map[string][]domain.Recommendation
	getErr   error
	setErr   error
	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]domain.Recommendation)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]domain.Recommendation, bool, error) {
	c.getCalls++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	recs, ok := c.entries[key]
	return recs, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, recs []domain.Recommendation, _ time.Duration) error {
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = recs
	return nil
}

type fakeAlgorithm struct {
	key     string
	results []domain.Recommendation
	err     error
	calls   int
}

func (a *fakeAlgorithm) Key() string { return a.key }

func (a *fakeAlgorithm) Recommend(_ context.Context, _ domain.RecommendationParams, _ int) ([]domain.Recommendation, error) {
	a.calls++
	return a.results, a.err
}

func rec(productID uint64, score float64, algo string) domain.Recommendation {
	return domain.Recommendation{
		ProductID: productID,
		Score:     score,
		Reason:    "test",
		Algorithm: algo,
		Metadata:  map[string]any{},
	}
}

func testConfig() Config {
	return Config{
		Enabled: []string{KeyMostViewed, KeyUpsell},
		DefaultsByContext: map[string]string{
			domain.ContextHome:        KeyMostViewed,
			domain.ContextProductPage: KeyUpsell,
		},
		DefaultAlgorithm: KeyMostViewed,
		CacheTTL:         time.Minute,
	}
}

// ---- registry & resolution ----

func TestNewService_UnregisteredFallbackFails(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultAlgorithm = "nope_v1"

	_, err := NewService(newFakeCache(), cfg, &fakeAlgorithm{key: KeyMostViewed})
	if err == nil {
		t.Fatal("expected configuration error for unregistered fallback, got nil")
	}
}

func TestResolve_RequestedAlgorithmWins(t *testing.T) {
	svc, err := NewService(newFakeCache(), testConfig(),
		&fakeAlgorithm{key: KeyMostViewed},
		&fakeAlgorithm{key: KeyUpsell},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	key := svc.resolveAlgorithmKey(domain.RecommendationParams{
		Context:   domain.ContextHome,
		Algorithm: KeyUpsell,
	})
	if key != KeyUpsell {
		t.Fatalf("expected %s, got %s", KeyUpsell, key)
	}
}

func TestResolve_DisabledRequestedFallsBackToContextDefault(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = []string{KeyMostViewed} // upsell registered but disabled

	svc, err := NewService(newFakeCache(), cfg,
		&fakeAlgorithm{key: KeyMostViewed},
		&fakeAlgorithm{key: KeyUpsell},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	key := svc.resolveAlgorithmKey(domain.RecommendationParams{
		Context:   domain.ContextHome,
		Algorithm: KeyUpsell,
	})
	if key != KeyMostViewed {
		t.Fatalf("expected context default %s, got %s", KeyMostViewed, key)
	}
}

func TestResolve_FallbackIgnoresEnabledFlag(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = nil // everything disabled

	svc, err := NewService(newFakeCache(), cfg,
		&fakeAlgorithm{key: KeyMostViewed},
		&fakeAlgorithm{key: KeyUpsell},
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	key := svc.resolveAlgorithmKey(domain.RecommendationParams{Context: domain.ContextProductPage})
	if key != KeyMostViewed {
		t.Fatalf("expected global fallback %s, got %s", KeyMostViewed, key)
	}
}

func TestRecommend_UnregisteredContextDefaultYieldsEmpty(t *testing.T) {
	cfg := testConfig()
	// enabled but never registered: resolution picks it, compute serves empty
	cfg.Enabled = []string{"ghost_v1"}
	cfg.DefaultsByContext = map[string]string{domain.ContextHome: "ghost_v1"}

	svc, err := NewService(newFakeCache(), cfg, &fakeAlgorithm{key: KeyMostViewed})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	recs, err := svc.Recommend(context.Background(), domain.RecommendationParams{Context: domain.ContextHome})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty result, got %d items", len(recs))
	}
}

// ---- cache keys ----

func TestBuildCacheKey_ProductIDsOrderIndependent(t *testing.T) {
	a := domain.RecommendationParams{Context: domain.ContextCart, ProductIDs: []uint64{3, 1, 2}}
	b := domain.RecommendationParams{Context: domain.ContextCart, ProductIDs: []uint64{1, 2, 3}}

	keyA := buildCacheKey(KeyFrequentlyBought, a, 10)
	keyB := buildCacheKey(KeyFrequentlyBought, b, 10)
	if keyA != keyB {
		t.Fatalf("set-equal inputs produced different keys:\n%s\n%s", keyA, keyB)
	}

	want := "recs:fbt_v1:cart::::1,2,3:10"
	if keyA != want {
		t.Fatalf("unexpected key %q, want %q", keyA, want)
	}
}

func TestBuildCacheKey_DoesNotMutateParams(t *testing.T) {
	params := domain.RecommendationParams{Context: domain.ContextCart, ProductIDs: []uint64{3, 1, 2}}
	buildCacheKey(KeyFrequentlyBought, params, 10)

	if !reflect.DeepEqual(params.ProductIDs, []uint64{3, 1, 2}) {
		t.Fatalf("cache key build reordered caller's slice: %v", params.ProductIDs)
	}
}

func TestBuildCacheKey_DistinguishesRequests(t *testing.T) {
	base := domain.RecommendationParams{Context: domain.ContextHome, UserID: 7}
	other := domain.RecommendationParams{Context: domain.ContextHome, UserID: 8}

	if buildCacheKey(KeyMostViewed, base, 10) == buildCacheKey(KeyMostViewed, other, 10) {
		t.Fatal("different users share a cache key")
	}
	if buildCacheKey(KeyMostViewed, base, 10) == buildCacheKey(KeyMostViewed, base, 20) {
		t.Fatal("different limits share a cache key")
	}
}

// ---- cache-aside behavior ----

func TestRecommend_SecondCallIsCacheHit(t *testing.T) {
	cache := newFakeCache()
	algo := &fakeAlgorithm{key: KeyMostViewed, results: []domain.Recommendation{
		rec(1, 3.0, KeyMostViewed),
		rec(2, 2.0, KeyMostViewed),
	}}

	svc, err := NewService(cache, testConfig(), algo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	params := domain.RecommendationParams{Context: domain.ContextHome, Limit: 10}

	first, err := svc.Recommend(context.Background(), params)
	if err != nil {
		t.Fatalf("first Recommend: %v", err)
	}
	second, err := svc.Recommend(context.Background(), params)
	if err != nil {
		t.Fatalf("second Recommend: %v", err)
	}

	if algo.calls != 1 {
		t.Fatalf("expected exactly one compute, got %d", algo.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cache hit returned different results:\n%v\n%v", first, second)
	}
}

func TestRecommend_FiltersOutOfStockThenTruncates(t *testing.T) {
	cache := newFakeCache()
	oos := rec(2, 2.5, KeyMostViewed)
	oos.Metadata = map[string]any{"out_of_stock": true}

	algo := &fakeAlgorithm{key: KeyMostViewed, results: []domain.Recommendation{
		rec(1, 3.0, KeyMostViewed),
		oos,
		rec(3, 2.0, KeyMostViewed),
		rec(4, 1.0, KeyMostViewed),
	}}

	svc, err := NewService(cache, testConfig(), algo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	recs, err := svc.Recommend(context.Background(), domain.RecommendationParams{
		Context: domain.ContextHome,
		Limit:   3,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// item 2 filtered, then truncated to the limit: 1, 3, 4 all survive
	want := []uint64{1, 3, 4}
	if len(recs) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(recs))
	}
	for i, id := range want {
		if recs[i].ProductID != id {
			t.Errorf("position %d: expected product %d, got %d", i, id, recs[i].ProductID)
		}
	}
}

func TestRecommend_SortedDescendingWithinLimit(t *testing.T) {
	algo := &fakeAlgorithm{key: KeyMostViewed, results: []domain.Recommendation{
		rec(1, 5.0, KeyMostViewed),
		rec(2, 4.0, KeyMostViewed),
		rec(3, 3.0, KeyMostViewed),
	}}

	svc, err := NewService(newFakeCache(), testConfig(), algo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	recs, err := svc.Recommend(context.Background(), domain.RecommendationParams{
		Context: domain.ContextHome,
		Limit:   2,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(recs) > 2 {
		t.Fatalf("result exceeds limit: %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Fatalf("scores not descending at %d: %v", i, recs)
		}
	}
}

func TestRecommend_CacheReadFailureBypassed(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis: connection refused")
	cache.setErr = errors.New("redis: connection refused")

	algo := &fakeAlgorithm{key: KeyMostViewed, results: []domain.Recommendation{rec(1, 1.0, KeyMostViewed)}}

	svc, err := NewService(cache, testConfig(), algo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	recs, err := svc.Recommend(context.Background(), domain.RecommendationParams{Context: domain.ContextHome})
	if err != nil {
		t.Fatalf("cache outage must not fail the request: %v", err)
	}
	if len(recs) != 1 || recs[0].ProductID != 1 {
		t.Fatalf("expected computed result despite cache outage, got %v", recs)
	}
}

func TestRecommend_AlgorithmFailureYieldsEmpty(t *testing.T) {
	algo := &fakeAlgorithm{key: KeyMostViewed, err: errors.New("aggregate store down")}

	svc, err := NewService(newFakeCache(), testConfig(), algo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	recs, err := svc.Recommend(context.Background(), domain.RecommendationParams{Context: domain.ContextHome})
	if err != nil {
		t.Fatalf("algorithm failure must not fail the request: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty result, got %v", recs)
	}
}

func TestRecommend_CanceledContext(t *testing.T) {
	svc, err := NewService(newFakeCache(), testConfig(), &fakeAlgorithm{key: KeyMostViewed})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Recommend(ctx, domain.RecommendationParams{Context: domain.ContextHome}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

package recommendation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"marketRecs/domain"
	"marketRecs/pkg/logger"
	"marketRecs/pkg/metrics"
)

// Cache is the key/value store for ranked result sets. Get reports a miss
// with ok=false; an error means the backend itself failed and the caller
// computes without it.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.Recommendation, bool, error)
	Set(ctx context.Context, key string, recs []domain.Recommendation, ttl time.Duration) error
}

// Service owns the algorithm registry, the per-request resolution policy and
// the cache-aside path. The registry is built once at startup and read-only
// afterwards, so concurrent requests need no locking.
//
// Concurrent misses on the same key may each compute and overwrite the
// entry. That duplicate work is accepted; results are identical and the
// cache converges, so there is no single-flight de-duplication here.
type Service struct {
	algorithms map[string]Algorithm
	enabled    map[string]bool
	cache      Cache
	cfg        Config
}

// NewService validates the configuration against the registry. An
// unregistered fallback algorithm is a configuration error and must halt
// startup: it is the one key resolution is never allowed to miss.
func NewService(cache Cache, cfg Config, algorithms ...Algorithm) (*Service, error) {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	registry := make(map[string]Algorithm, len(algorithms))
	for _, algo := range algorithms {
		registry[algo.Key()] = algo
	}

	if _, ok := registry[cfg.DefaultAlgorithm]; !ok {
		return nil, fmt.Errorf("default algorithm %q is not registered", cfg.DefaultAlgorithm)
	}

	enabled := make(map[string]bool, len(cfg.Enabled))
	for _, key := range cfg.Enabled {
		enabled[key] = true
	}

	return &Service{
		algorithms: registry,
		enabled:    enabled,
		cache:      cache,
		cfg:        cfg,
	}, nil
}

// Recommend resolves an algorithm for the request and serves the ranked
// list cache-aside. Recommendations are best-effort: a failing algorithm or
// data store yields an empty list, never an error, so a page render is
// never blocked. The only error returned is context cancellation.
func (s *Service) Recommend(ctx context.Context, params domain.RecommendationParams) ([]domain.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	algorithmKey := s.resolveAlgorithmKey(params)
	metrics.RecommendRequests.WithLabelValues(algorithmKey).Inc()

	cacheKey := buildCacheKey(algorithmKey, params, limit)

	// A live cached entry is trusted as-is until TTL expiry; staleness is
	// bounded by the TTL. Backend failure falls through to compute.
	cached, ok, err := s.cache.Get(ctx, cacheKey)
	if err != nil {
		metrics.CacheErrors.Inc()
		logger.Warn("recommendation cache read failed, computing directly", "key", cacheKey, "error", err)
	} else if ok {
		metrics.CacheHits.Inc()
		return cached, nil
	} else {
		metrics.CacheMisses.Inc()
	}

	results := s.compute(ctx, algorithmKey, params, limit)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	// Filter before truncation: algorithms over-fetch so that dropped
	// out-of-stock items still leave a full page.
	results = dropOutOfStock(results)
	if len(results) > limit {
		results = results[:limit]
	}

	if err := s.cache.Set(ctx, cacheKey, results, s.cfg.CacheTTL); err != nil {
		metrics.CacheErrors.Inc()
		logger.Warn("recommendation cache write failed", "key", cacheKey, "error", err)
	}

	return results, nil
}

func (s *Service) compute(ctx context.Context, algorithmKey string, params domain.RecommendationParams, limit int) []domain.Recommendation {
	algo, ok := s.algorithms[algorithmKey]
	if !ok {
		// Resolution should not produce unregistered keys, but a missing
		// algorithm is still served as an empty list rather than a failure.
		logger.Warn("resolved algorithm not in registry", "algorithm", algorithmKey)
		return []domain.Recommendation{}
	}

	results, err := algo.Recommend(ctx, params, limit)
	if err != nil {
		logger.Error("recommendation algorithm failed", "algorithm", algorithmKey, "error", err)
		return []domain.Recommendation{}
	}
	if results == nil {
		results = []domain.Recommendation{}
	}
	return results
}

// resolveAlgorithmKey picks the strategy for a request: explicit request
// first, then the context default, then the global fallback. The fallback
// wins regardless of its enabled flag.
func (s *Service) resolveAlgorithmKey(params domain.RecommendationParams) string {
	if requested := params.Algorithm; requested != "" {
		if _, ok := s.algorithms[requested]; ok && s.enabled[requested] {
			return requested
		}
	}

	if key, ok := s.cfg.DefaultsByContext[params.Context]; ok && s.enabled[key] {
		return key
	}

	return s.cfg.DefaultAlgorithm
}

// buildCacheKey derives a deterministic key from the logical request.
// product_ids are sorted so set-equal inputs share an entry.
func buildCacheKey(algorithmKey string, params domain.RecommendationParams, limit int) string {
	var idsPart string
	if len(params.ProductIDs) > 0 {
		ids := make([]uint64, len(params.ProductIDs))
		copy(ids, params.ProductIDs)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = strconv.FormatUint(id, 10)
		}
		idsPart = strings.Join(parts, ",")
	}

	return strings.Join([]string{
		"recs",
		algorithmKey,
		params.Context,
		formatID(params.UserID),
		params.SessionID,
		formatID(params.ProductID),
		idsPart,
		strconv.Itoa(limit),
	}, ":")
}

func formatID(id uint64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(id, 10)
}

// dropOutOfStock removes items whose metadata marks them out of stock. A
// product gone missing between aggregate computation and serving shows up
// the same way, which is data drift, not an error.
func dropOutOfStock(recs []domain.Recommendation) []domain.Recommendation {
	out := recs[:0]
	for _, rec := range recs {
		if isOutOfStock(rec.Metadata) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// isOutOfStock treats bool true and nonzero numbers as set, so the check
// holds for both freshly computed metadata and JSON round-tripped copies.
func isOutOfStock(metadata map[string]any) bool {
	switch v := metadata["out_of_stock"].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

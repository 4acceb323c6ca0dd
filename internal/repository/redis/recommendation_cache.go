package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketRecs/domain"

	"github.com/redis/go-redis/v9"
)

// RecommendationCache stores ranked result sets under the orchestrator's
// deterministic keys. It owns the whole key namespace: nothing else reads
// or writes these entries, and expiry is left to Redis TTL.
type RecommendationCache struct {
	client *redis.Client
}

func NewRecommendationCache(client *redis.Client) *RecommendationCache {
	return &RecommendationCache{
		client: client,
	}
}

// Get returns the cached result set for key. A missing or expired entry is
// a miss, not an error; errors mean the backend itself failed.
func (r *RecommendationCache) Get(ctx context.Context, key string) ([]domain.Recommendation, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get recommendations from Redis: %w", err)
	}

	var recs []domain.Recommendation
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		// A corrupt entry is treated as a miss; the next Set overwrites it.
		return nil, false, fmt.Errorf("failed to unmarshal cached recommendations: %w", err)
	}

	return recs, true, nil
}

// Set writes the entry with its TTL in one command, so an entry is either
// fully present or absent.
func (r *RecommendationCache) Set(ctx context.Context, key string, recs []domain.Recommendation, ttl time.Duration) error {
	jsonData, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store recommendations in Redis: %w", err)
	}

	return nil
}

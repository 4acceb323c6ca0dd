package recommendation

import (
	"time"

	"marketRecs/domain"
)

const (
	defaultLimit    = 10
	defaultCacheTTL = 300 * time.Second
)

// Config is fixed at construction. The service keeps no other mutable
// configuration state.
type Config struct {
	// Keys allowed to serve traffic. A registered but disabled algorithm is
	// skipped by resolution (still reachable via the global fallback).
	Enabled []string

	// Default key per request context.
	DefaultsByContext map[string]string

	// Final fallback, used regardless of its enabled flag. Must name a
	// registered algorithm; NewService fails otherwise.
	DefaultAlgorithm string

	CacheTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled: []string{
			KeyUpsell, KeyCrossSell, KeyMostViewed,
			KeyMostPurchased, KeyPreviouslyViewed, KeyFrequentlyBought,
		},
		DefaultsByContext: map[string]string{
			domain.ContextHome:        KeyMostViewed,
			domain.ContextProductPage: KeyUpsell,
			domain.ContextCart:        KeyFrequentlyBought,
			domain.ContextEmail:       KeyPreviouslyViewed,
			domain.ContextCheckout:    KeyCrossSell,
		},
		DefaultAlgorithm: KeyMostViewed,
		CacheTTL:         defaultCacheTTL,
	}
}

package recommendation

import (
	"context"

	"marketRecs/domain"
)

// Algorithm is a pluggable ranking strategy. Implementations return at most
// limit items sorted by score descending, and are expected to over-fetch
// internally because the orchestrator filters after they rank.
//
// Algorithms never fail a request over missing inputs: no product id, no
// user, no session all yield an empty slice.
type Algorithm interface {
	Key() string
	Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error)
}

// ---- Repository interfaces (implemented in internal/repository) ----

type CopurchaseRepository interface {
	// Rows for one product ordered by score descending.
	ListByProduct(ctx context.Context, productID uint64, limit int) ([]domain.ProductCopurchase, error)
	// Candidate scores summed across a seed set, ordered by total descending.
	// Seeds themselves may appear and are excluded by the caller.
	SumScoresForSeeds(ctx context.Context, seedIDs []uint64, limit int) ([]CopurchaseScore, error)
}

type CopurchaseScore struct {
	ProductID  uint64  `gorm:"column:product_id"`
	TotalScore float64 `gorm:"column:total_score"`
}

type PopularityRepository interface {
	// categoryID 0 means all categories.
	TopByViewScore(ctx context.Context, categoryID uint64, limit int) ([]domain.ProductPopularity, error)
	TopByPurchaseScore(ctx context.Context, categoryID uint64, limit int) ([]domain.ProductPopularity, error)
}

type ViewedProductRepository interface {
	RecentByUser(ctx context.Context, userID uint64, limit int) ([]domain.UserViewedProduct, error)
}

type SessionViewRepository interface {
	// Most recent product_view events for a session, newest first.
	RecentViewsBySession(ctx context.Context, sessionID string, limit int) ([]domain.ProductEvent, error)
}

type UpsellProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, bool, error)
	// Active, in-stock, priced candidates inside [minPrice, maxPrice] that
	// share at least one level of the base product's category hierarchy.
	UpsellCandidates(ctx context.Context, base domain.Product, minPrice, maxPrice float64, limit int) ([]domain.Product, error)
}

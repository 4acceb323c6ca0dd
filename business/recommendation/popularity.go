package recommendation

import (
	"context"
	"fmt"

	"marketRecs/domain"
)

const (
	KeyMostViewed    = "most_viewed_v1"
	KeyMostPurchased = "most_purchased_v1"
)

// MostViewed ranks by the precomputed view score, optionally scoped to a
// category. MostPurchased is the same read over the purchase score.
type MostViewed struct {
	popularityRepo PopularityRepository
}

func NewMostViewed(popularityRepo PopularityRepository) *MostViewed {
	return &MostViewed{popularityRepo: popularityRepo}
}

func (a *MostViewed) Key() string {
	return KeyMostViewed
}

func (a *MostViewed) Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error) {
	rows, err := a.popularityRepo.TopByViewScore(ctx, params.CategoryID, limit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to query popularity by views: %w", err)
	}

	recs := make([]domain.Recommendation, 0, limit)
	for _, row := range rows {
		recs = append(recs, domain.Recommendation{
			ProductID: row.ProductID,
			Score:     row.ViewScore,
			Reason:    "Most viewed in category",
			Algorithm: a.Key(),
			Metadata:  map[string]any{},
		})
		if len(recs) >= limit {
			break
		}
	}

	return recs, nil
}

type MostPurchased struct {
	popularityRepo PopularityRepository
}

func NewMostPurchased(popularityRepo PopularityRepository) *MostPurchased {
	return &MostPurchased{popularityRepo: popularityRepo}
}

func (a *MostPurchased) Key() string {
	return KeyMostPurchased
}

func (a *MostPurchased) Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error) {
	rows, err := a.popularityRepo.TopByPurchaseScore(ctx, params.CategoryID, limit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to query popularity by purchases: %w", err)
	}

	recs := make([]domain.Recommendation, 0, limit)
	for _, row := range rows {
		recs = append(recs, domain.Recommendation{
			ProductID: row.ProductID,
			Score:     row.PurchaseScore,
			Reason:    "Best sellers in category",
			Algorithm: a.Key(),
			Metadata:  map[string]any{},
		})
		if len(recs) >= limit {
			break
		}
	}

	return recs, nil
}

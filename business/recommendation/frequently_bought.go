package recommendation

import (
	"context"
	"fmt"

	"marketRecs/domain"
)

const KeyFrequentlyBought = "fbt_v1"

// FrequentlyBought ranks candidates by their summed co-purchase score across
// a seed set (a cart, or a single product), excluding the seeds themselves.
type FrequentlyBought struct {
	copurchaseRepo CopurchaseRepository
}

func NewFrequentlyBought(copurchaseRepo CopurchaseRepository) *FrequentlyBought {
	return &FrequentlyBought{copurchaseRepo: copurchaseRepo}
}

func (a *FrequentlyBought) Key() string {
	return KeyFrequentlyBought
}

func (a *FrequentlyBought) Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error) {
	seeds := params.ProductIDs
	if len(seeds) == 0 && params.ProductID != 0 {
		seeds = []uint64{params.ProductID}
	}
	if len(seeds) == 0 {
		return []domain.Recommendation{}, nil
	}

	rows, err := a.copurchaseRepo.SumScoresForSeeds(ctx, seeds, limit*3)
	if err != nil {
		return nil, fmt.Errorf("failed to sum copurchase scores: %w", err)
	}

	exclude := make(map[uint64]struct{}, len(seeds))
	for _, id := range seeds {
		exclude[id] = struct{}{}
	}

	recs := make([]domain.Recommendation, 0, limit)
	for _, row := range rows {
		if _, seed := exclude[row.ProductID]; seed {
			continue
		}
		recs = append(recs, domain.Recommendation{
			ProductID: row.ProductID,
			Score:     row.TotalScore,
			Reason:    "Frequently bought together",
			Algorithm: a.Key(),
			Metadata:  map[string]any{},
		})
		if len(recs) >= limit {
			break
		}
	}

	return recs, nil
}

package recommendation

import (
	"context"
	"fmt"

	"marketRecs/domain"
)

const KeyCrossSell = "cross_sell_v1"

// CrossSell surfaces products commonly bought with the given product,
// straight from the symmetric co-purchase aggregate.
type CrossSell struct {
	copurchaseRepo CopurchaseRepository
}

func NewCrossSell(copurchaseRepo CopurchaseRepository) *CrossSell {
	return &CrossSell{copurchaseRepo: copurchaseRepo}
}

func (a *CrossSell) Key() string {
	return KeyCrossSell
}

func (a *CrossSell) Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error) {
	if params.ProductID == 0 {
		return []domain.Recommendation{}, nil
	}

	rows, err := a.copurchaseRepo.ListByProduct(ctx, params.ProductID, limit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to list copurchases: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, domain.Recommendation{
			ProductID: row.CopurchasedProductID,
			Score:     row.Score,
			Reason:    "Cross-sell — commonly bought with this",
			Algorithm: a.Key(),
			Metadata:  map[string]any{},
		})
		if len(recs) >= limit {
			break
		}
	}

	return recs, nil
}

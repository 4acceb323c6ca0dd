package aggregate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"marketRecs/domain"
	"marketRecs/pkg/logger"
)

// ProductEventCounts is one row of the grouped event scan: per-product view
// and purchase totals since the cutoff, with the product's category joined in.
type ProductEventCounts struct {
	ProductID     uint64 `gorm:"column:product_id"`
	CategoryID    uint64 `gorm:"column:category_id"`
	ViewCount     uint64 `gorm:"column:view_count"`
	PurchaseCount uint64 `gorm:"column:purchase_count"`
}

type EventStatsRepository interface {
	ViewPurchaseCountsSince(ctx context.Context, since time.Time) ([]ProductEventCounts, error)
	// Product id sets of orders recorded in purchase events since the cutoff.
	OrderProductIDsSince(ctx context.Context, since time.Time) ([][]uint64, error)
}

type PopularityWriter interface {
	UpsertAll(ctx context.Context, rows []domain.ProductPopularity) error
}

type CopurchaseWriter interface {
	UpsertPairs(ctx context.Context, pairs []domain.ProductCopurchase) error
}

// Stats summarizes one recompute run.
type Stats struct {
	PopularityRows  int
	CopurchasePairs int
	Since           time.Time
}

// Service rebuilds the read-only aggregate tables the recommendation
// algorithms consume. It runs periodically (or on demand), never
// incrementally per event.
type Service struct {
	eventRepo      EventStatsRepository
	popularityRepo PopularityWriter
	copurchaseRepo CopurchaseWriter
}

func NewService(eventRepo EventStatsRepository, popularityRepo PopularityWriter, copurchaseRepo CopurchaseWriter) *Service {
	return &Service{
		eventRepo:      eventRepo,
		popularityRepo: popularityRepo,
		copurchaseRepo: copurchaseRepo,
	}
}

// Recompute rebuilds product_popularity and product_copurchase from events
// newer than the cutoff.
//
// view_score passes the view count through; purchase_score weighs purchases
// double and views half. The exact numbers matter less than the ordering
// they induce, which ranking tests pin down.
func (s *Service) Recompute(ctx context.Context, since time.Time) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, fmt.Errorf("context error: %w", err)
	}

	stats := Stats{Since: since}

	counts, err := s.eventRepo.ViewPurchaseCountsSince(ctx, since)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate event counts: %w", err)
	}

	now := time.Now()
	popularity := make([]domain.ProductPopularity, 0, len(counts))
	for _, row := range counts {
		popularity = append(popularity, domain.ProductPopularity{
			ProductID:     row.ProductID,
			CategoryID:    row.CategoryID,
			ViewCount:     row.ViewCount,
			PurchaseCount: row.PurchaseCount,
			ViewScore:     float64(row.ViewCount),
			PurchaseScore: float64(row.PurchaseCount)*2 + float64(row.ViewCount)*0.5,
			ComputedAt:    now,
		})
	}

	if err := s.popularityRepo.UpsertAll(ctx, popularity); err != nil {
		return stats, fmt.Errorf("failed to upsert popularity: %w", err)
	}
	stats.PopularityRows = len(popularity)

	orders, err := s.eventRepo.OrderProductIDsSince(ctx, since)
	if err != nil {
		return stats, fmt.Errorf("failed to load purchase orders: %w", err)
	}

	pairs := copurchasePairs(orders)
	if err := s.copurchaseRepo.UpsertPairs(ctx, pairs); err != nil {
		return stats, fmt.Errorf("failed to upsert copurchase pairs: %w", err)
	}
	stats.CopurchasePairs = len(pairs)

	logger.Info("aggregate recompute finished",
		"since", since.Format(time.RFC3339),
		"popularity_rows", stats.PopularityRows,
		"copurchase_pairs", stats.CopurchasePairs,
	)

	return stats, nil
}

type pairKey struct {
	a, b uint64
}

// copurchasePairs counts every unordered product pair seen in a single
// order and emits it in both directions with identical count and score.
// Self-pairs never occur because a < b is enforced when counting.
func copurchasePairs(orders [][]uint64) []domain.ProductCopurchase {
	counts := make(map[pairKey]uint64)
	for _, items := range orders {
		ids := dedupeSorted(items)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				counts[pairKey{a: ids[i], b: ids[j]}]++
			}
		}
	}

	pairs := make([]domain.ProductCopurchase, 0, len(counts)*2)
	for key, count := range counts {
		pairs = append(pairs,
			domain.ProductCopurchase{
				ProductID:            key.a,
				CopurchasedProductID: key.b,
				Count:                count,
				Score:                float64(count),
			},
			domain.ProductCopurchase{
				ProductID:            key.b,
				CopurchasedProductID: key.a,
				Count:                count,
				Score:                float64(count),
			},
		)
	}

	// Map iteration order is random; fix it so upsert batches are stable.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ProductID != pairs[j].ProductID {
			return pairs[i].ProductID < pairs[j].ProductID
		}
		return pairs[i].CopurchasedProductID < pairs[j].CopurchasedProductID
	})

	return pairs
}

func dedupeSorted(items []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(items))
	out := make([]uint64, 0, len(items))
	for _, id := range items {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package recommendation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"marketRecs/domain"
)

const KeyPreviouslyViewed = "previously_viewed_v1"

// PreviouslyViewed re-surfaces what the shopper looked at before. Logged-in
// users read the per-user view aggregate; anonymous sessions fall back to a
// scan of recent view events. With neither identifier nothing is queried.
type PreviouslyViewed struct {
	viewedRepo  ViewedProductRepository
	sessionRepo SessionViewRepository
}

func NewPreviouslyViewed(viewedRepo ViewedProductRepository, sessionRepo SessionViewRepository) *PreviouslyViewed {
	return &PreviouslyViewed{
		viewedRepo:  viewedRepo,
		sessionRepo: sessionRepo,
	}
}

func (a *PreviouslyViewed) Key() string {
	return KeyPreviouslyViewed
}

func (a *PreviouslyViewed) Recommend(ctx context.Context, params domain.RecommendationParams, limit int) ([]domain.Recommendation, error) {
	if params.UserID != 0 {
		return a.recommendForUser(ctx, params.UserID, limit)
	}
	if params.SessionID != "" {
		return a.recommendForSession(ctx, params.SessionID, limit)
	}
	return []domain.Recommendation{}, nil
}

func (a *PreviouslyViewed) recommendForUser(ctx context.Context, userID uint64, limit int) ([]domain.Recommendation, error) {
	rows, err := a.viewedRepo.RecentByUser(ctx, userID, limit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to query viewed products: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(rows))
	for _, row := range rows {
		reason := "Previously viewed"
		if row.ViewCount > 1 {
			reason = fmt.Sprintf("Previously viewed (%d times)", row.ViewCount)
		}

		recs = append(recs, domain.Recommendation{
			ProductID: row.ProductID,
			Score:     recencyScore(row.LastViewedAt, row.ViewCount),
			Reason:    reason,
			Algorithm: a.Key(),
			Metadata: map[string]any{
				"view_count":     row.ViewCount,
				"last_viewed_at": row.LastViewedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > limit {
		recs = recs[:limit]
	}

	return recs, nil
}

func (a *PreviouslyViewed) recommendForSession(ctx context.Context, sessionID string, limit int) ([]domain.Recommendation, error) {
	events, err := a.sessionRepo.RecentViewsBySession(ctx, sessionID, limit*3)
	if err != nil {
		return nil, fmt.Errorf("failed to query session views: %w", err)
	}

	// Events arrive newest first; keep the most recent occurrence per product.
	seen := make(map[uint64]struct{}, len(events))
	recs := make([]domain.Recommendation, 0, limit)
	for _, ev := range events {
		if _, dup := seen[ev.ProductID]; dup {
			continue
		}
		seen[ev.ProductID] = struct{}{}

		recs = append(recs, domain.Recommendation{
			ProductID: ev.ProductID,
			Score:     recencyScore(ev.OccurredAt, 0),
			Reason:    "Previously viewed",
			Algorithm: a.Key(),
			Metadata:  map[string]any{},
		})
		if len(recs) >= limit {
			break
		}
	}

	return recs, nil
}

// recencyScore orders by last-view time with a small view-count bonus. The
// absolute value is meaningless; only the ordering (more recent and more
// often viewed ranks higher) is contractual.
func recencyScore(lastViewed time.Time, viewCount int) float64 {
	return float64(lastViewed.Unix())/1e9 + 0.1*float64(viewCount)
}

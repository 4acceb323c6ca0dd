package recommendation

import (
	"context"
	"testing"
	"time"

	"marketRecs/domain"
)

type fakeCopurchaseRepo struct {
	rows     map[uint64][]domain.ProductCopurchase
	sums     []CopurchaseScore
	gotSeeds []uint64
	gotLimit int
}

func (r *fakeCopurchaseRepo) ListByProduct(_ context.Context, productID uint64, limit int) ([]domain.ProductCopurchase, error) {
	r.gotLimit = limit
	return r.rows[productID], nil
}

func (r *fakeCopurchaseRepo) SumScoresForSeeds(_ context.Context, seedIDs []uint64, limit int) ([]CopurchaseScore, error) {
	r.gotSeeds = seedIDs
	r.gotLimit = limit
	return r.sums, nil
}

type fakePopularityRepo struct {
	rows          []domain.ProductPopularity
	gotCategoryID uint64
}

func (r *fakePopularityRepo) TopByViewScore(_ context.Context, categoryID uint64, _ int) ([]domain.ProductPopularity, error) {
	r.gotCategoryID = categoryID
	return r.rows, nil
}

func (r *fakePopularityRepo) TopByPurchaseScore(_ context.Context, categoryID uint64, _ int) ([]domain.ProductPopularity, error) {
	r.gotCategoryID = categoryID
	return r.rows, nil
}

type fakeViewedRepo struct {
	rows  []domain.UserViewedProduct
	calls int
}

func (r *fakeViewedRepo) RecentByUser(_ context.Context, _ uint64, _ int) ([]domain.UserViewedProduct, error) {
	r.calls++
	return r.rows, nil
}

type fakeSessionViewRepo struct {
	events []domain.ProductEvent
	calls  int
}

func (r *fakeSessionViewRepo) RecentViewsBySession(_ context.Context, _ string, _ int) ([]domain.ProductEvent, error) {
	r.calls++
	return r.events, nil
}

// ---- cross-sell ----

func TestCrossSell_SymmetricPairsSurfaceBothDirections(t *testing.T) {
	// the aggregate writes {1,2} as both (1,2) and (2,1)
	repo := &fakeCopurchaseRepo{rows: map[uint64][]domain.ProductCopurchase{
		1: {{ProductID: 1, CopurchasedProductID: 2, Count: 4, Score: 4}},
		2: {{ProductID: 2, CopurchasedProductID: 1, Count: 4, Score: 4}},
	}}
	algo := NewCrossSell(repo)

	fromOne, err := algo.Recommend(context.Background(), domain.RecommendationParams{ProductID: 1}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	fromTwo, err := algo.Recommend(context.Background(), domain.RecommendationParams{ProductID: 2}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(fromOne) != 1 || fromOne[0].ProductID != 2 || fromOne[0].Score != 4 {
		t.Fatalf("1 -> 2 not surfaced: %v", fromOne)
	}
	if len(fromTwo) != 1 || fromTwo[0].ProductID != 1 || fromTwo[0].Score != 4 {
		t.Fatalf("2 -> 1 not surfaced: %v", fromTwo)
	}
}

func TestCrossSell_NoProductIDYieldsEmpty(t *testing.T) {
	recs, err := NewCrossSell(&fakeCopurchaseRepo{}).Recommend(context.Background(), domain.RecommendationParams{}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty, got %v", recs)
	}
}

func TestCrossSell_OverFetchesAndTruncates(t *testing.T) {
	rows := make([]domain.ProductCopurchase, 6)
	for i := range rows {
		rows[i] = domain.ProductCopurchase{ProductID: 1, CopurchasedProductID: uint64(10 + i), Score: float64(6 - i)}
	}
	repo := &fakeCopurchaseRepo{rows: map[uint64][]domain.ProductCopurchase{1: rows}}

	recs, err := NewCrossSell(repo).Recommend(context.Background(), domain.RecommendationParams{ProductID: 1}, 3)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if repo.gotLimit != 6 {
		t.Errorf("fetch limit = %d, want 6", repo.gotLimit)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 items, got %d", len(recs))
	}
}

// ---- frequently bought together ----

func TestFrequentlyBought_ExcludesSeeds(t *testing.T) {
	repo := &fakeCopurchaseRepo{sums: []CopurchaseScore{
		{ProductID: 3, TotalScore: 9},
		{ProductID: 1, TotalScore: 7}, // seed, must be dropped
		{ProductID: 4, TotalScore: 5},
	}}

	recs, err := NewFrequentlyBought(repo).Recommend(context.Background(), domain.RecommendationParams{
		ProductIDs: []uint64{1, 2},
	}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("expected 2 items, got %d", len(recs))
	}
	for _, r := range recs {
		if r.ProductID == 1 || r.ProductID == 2 {
			t.Fatalf("seed %d leaked into results", r.ProductID)
		}
	}
	if recs[0].ProductID != 3 || recs[1].ProductID != 4 {
		t.Fatalf("unexpected order: %v", recs)
	}
}

func TestFrequentlyBought_SingleProductFallsBackToProductID(t *testing.T) {
	repo := &fakeCopurchaseRepo{sums: []CopurchaseScore{{ProductID: 2, TotalScore: 3}}}

	recs, err := NewFrequentlyBought(repo).Recommend(context.Background(), domain.RecommendationParams{ProductID: 1}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(repo.gotSeeds) != 1 || repo.gotSeeds[0] != 1 {
		t.Fatalf("expected product id as seed, got %v", repo.gotSeeds)
	}
	if len(recs) != 1 || recs[0].ProductID != 2 {
		t.Fatalf("unexpected results: %v", recs)
	}
}

func TestFrequentlyBought_NoSeedsYieldsEmpty(t *testing.T) {
	recs, err := NewFrequentlyBought(&fakeCopurchaseRepo{}).Recommend(context.Background(), domain.RecommendationParams{}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty, got %v", recs)
	}
}

// ---- popularity ----

func TestMostViewed_CategoryScopePassedThrough(t *testing.T) {
	repo := &fakePopularityRepo{rows: []domain.ProductPopularity{
		{ProductID: 1, ViewScore: 40, PurchaseScore: 12},
		{ProductID: 2, ViewScore: 25, PurchaseScore: 30},
	}}

	recs, err := NewMostViewed(repo).Recommend(context.Background(), domain.RecommendationParams{CategoryID: 5}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if repo.gotCategoryID != 5 {
		t.Errorf("category scope = %d, want 5", repo.gotCategoryID)
	}
	if recs[0].Score != 40 || recs[1].Score != 25 {
		t.Fatalf("expected view scores, got %v", recs)
	}
}

func TestMostPurchased_UsesPurchaseScore(t *testing.T) {
	repo := &fakePopularityRepo{rows: []domain.ProductPopularity{
		{ProductID: 2, ViewScore: 25, PurchaseScore: 30},
	}}

	recs, err := NewMostPurchased(repo).Recommend(context.Background(), domain.RecommendationParams{}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if recs[0].Score != 30 {
		t.Fatalf("expected purchase score 30, got %v", recs[0].Score)
	}
	if repo.gotCategoryID != 0 {
		t.Errorf("expected unscoped query, got category %d", repo.gotCategoryID)
	}
}

// ---- previously viewed ----

func TestPreviouslyViewed_NoIdentifierQueriesNothing(t *testing.T) {
	viewed := &fakeViewedRepo{}
	session := &fakeSessionViewRepo{}

	recs, err := NewPreviouslyViewed(viewed, session).Recommend(context.Background(), domain.RecommendationParams{}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(recs) != 0 {
		t.Fatalf("expected empty, got %v", recs)
	}
	if viewed.calls != 0 || session.calls != 0 {
		t.Fatalf("repositories queried without an identifier: user=%d session=%d", viewed.calls, session.calls)
	}
}

func TestPreviouslyViewed_UserRankedByRecencyAndViews(t *testing.T) {
	now := time.Now()
	viewed := &fakeViewedRepo{rows: []domain.UserViewedProduct{
		{ProductID: 1, ViewCount: 1, LastViewedAt: now.Add(-2 * time.Hour)},
		{ProductID: 2, ViewCount: 5, LastViewedAt: now.Add(-2 * time.Hour)},
		{ProductID: 3, ViewCount: 1, LastViewedAt: now},
	}}

	recs, err := NewPreviouslyViewed(viewed, &fakeSessionViewRepo{}).Recommend(context.Background(), domain.RecommendationParams{UserID: 7}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	// the view-count bonus dominates small recency gaps; product 2 leads
	want := []uint64{2, 3, 1}
	for i, id := range want {
		if recs[i].ProductID != id {
			t.Fatalf("position %d: got %d, want %d (results %v)", i, recs[i].ProductID, id, recs)
		}
	}

	if recs[0].Reason != "Previously viewed (5 times)" {
		t.Errorf("reason = %q", recs[0].Reason)
	}
	if recs[1].Reason != "Previously viewed" {
		t.Errorf("single-view reason = %q", recs[1].Reason)
	}
	if recs[0].Metadata["view_count"] != 5 {
		t.Errorf("view_count = %v, want 5", recs[0].Metadata["view_count"])
	}
	if _, ok := recs[0].Metadata["last_viewed_at"].(string); !ok {
		t.Errorf("last_viewed_at should be a formatted string, got %T", recs[0].Metadata["last_viewed_at"])
	}
}

func TestPreviouslyViewed_SessionDedupesKeepingNewest(t *testing.T) {
	now := time.Now()
	session := &fakeSessionViewRepo{events: []domain.ProductEvent{
		{ProductID: 9, OccurredAt: now},
		{ProductID: 8, OccurredAt: now.Add(-time.Minute)},
		{ProductID: 9, OccurredAt: now.Add(-2 * time.Minute)}, // older duplicate
	}}

	recs, err := NewPreviouslyViewed(&fakeViewedRepo{}, session).Recommend(context.Background(), domain.RecommendationParams{
		SessionID: "sess-1",
	}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if len(recs) != 2 {
		t.Fatalf("expected deduped 2 items, got %d", len(recs))
	}
	if recs[0].ProductID != 9 || recs[1].ProductID != 8 {
		t.Fatalf("unexpected order: %v", recs)
	}
	if recs[0].Score <= recs[1].Score {
		t.Fatalf("newer view should score higher: %v", recs)
	}
}

func TestPreviouslyViewed_UserTakesPrecedenceOverSession(t *testing.T) {
	viewed := &fakeViewedRepo{}
	session := &fakeSessionViewRepo{}

	_, err := NewPreviouslyViewed(viewed, session).Recommend(context.Background(), domain.RecommendationParams{
		UserID:    7,
		SessionID: "sess-1",
	}, 10)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	if viewed.calls != 1 || session.calls != 0 {
		t.Fatalf("expected user path only: user=%d session=%d", viewed.calls, session.calls)
	}
}

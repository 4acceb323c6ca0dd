package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketRecs/domain"
)

type fakeEventStatsRepo struct {
	counts    []ProductEventCounts
	countsErr error
	orders    [][]uint64
}

func (r *fakeEventStatsRepo) ViewPurchaseCountsSince(_ context.Context, _ time.Time) ([]ProductEventCounts, error) {
	return r.counts, r.countsErr
}

func (r *fakeEventStatsRepo) OrderProductIDsSince(_ context.Context, _ time.Time) ([][]uint64, error) {
	return r.orders, nil
}

type fakePopularityWriter struct {
	rows []domain.ProductPopularity
}

func (w *fakePopularityWriter) UpsertAll(_ context.Context, rows []domain.ProductPopularity) error {
	w.rows = rows
	return nil
}

type fakeCopurchaseWriter struct {
	pairs []domain.ProductCopurchase
}

func (w *fakeCopurchaseWriter) UpsertPairs(_ context.Context, pairs []domain.ProductCopurchase) error {
	w.pairs = pairs
	return nil
}

func TestRecompute_PopularityScores(t *testing.T) {
	events := &fakeEventStatsRepo{counts: []ProductEventCounts{
		{ProductID: 1, CategoryID: 5, ViewCount: 10, PurchaseCount: 3},
		{ProductID: 2, CategoryID: 5, ViewCount: 40, PurchaseCount: 0},
	}}
	popularity := &fakePopularityWriter{}
	copurchase := &fakeCopurchaseWriter{}

	since := time.Now().AddDate(0, 0, -30)
	stats, err := NewService(events, popularity, copurchase).Recompute(context.Background(), since)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if stats.PopularityRows != 2 {
		t.Fatalf("stats.PopularityRows = %d, want 2", stats.PopularityRows)
	}
	if !stats.Since.Equal(since) {
		t.Errorf("stats.Since = %v, want %v", stats.Since, since)
	}

	first := popularity.rows[0]
	if first.ViewScore != 10 {
		t.Errorf("view_score = %v, want view count 10", first.ViewScore)
	}
	// 3 purchases doubled plus 10 views halved
	if first.PurchaseScore != 11 {
		t.Errorf("purchase_score = %v, want 11", first.PurchaseScore)
	}
	if first.ComputedAt.IsZero() {
		t.Error("computed_at not set")
	}

	second := popularity.rows[1]
	if second.ViewScore != 40 || second.PurchaseScore != 20 {
		t.Errorf("view-only product scores = %v/%v, want 40/20", second.ViewScore, second.PurchaseScore)
	}
}

func TestRecompute_CopurchasePairsAreSymmetric(t *testing.T) {
	events := &fakeEventStatsRepo{orders: [][]uint64{
		{1, 2, 3},
		{2, 1}, // order within an order must not matter
	}}
	popularity := &fakePopularityWriter{}
	copurchase := &fakeCopurchaseWriter{}

	stats, err := NewService(events, popularity, copurchase).Recompute(context.Background(), time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	// pairs {1,2}x2, {1,3}, {2,3}, each in both directions
	if stats.CopurchasePairs != 6 {
		t.Fatalf("stats.CopurchasePairs = %d, want 6", stats.CopurchasePairs)
	}

	byPair := make(map[[2]uint64]domain.ProductCopurchase, len(copurchase.pairs))
	for _, p := range copurchase.pairs {
		byPair[[2]uint64{p.ProductID, p.CopurchasedProductID}] = p
	}

	for _, pair := range [][2]uint64{{1, 2}, {1, 3}, {2, 3}} {
		forward, okF := byPair[pair]
		backward, okB := byPair[[2]uint64{pair[1], pair[0]}]
		if !okF || !okB {
			t.Fatalf("pair %v missing a direction (forward=%v backward=%v)", pair, okF, okB)
		}
		if forward.Count != backward.Count || forward.Score != backward.Score {
			t.Errorf("pair %v asymmetric: %+v vs %+v", pair, forward, backward)
		}
	}

	if got := byPair[[2]uint64{1, 2}]; got.Count != 2 || got.Score != 2 {
		t.Errorf("pair {1,2} count/score = %d/%v, want 2/2", got.Count, got.Score)
	}
	if got := byPair[[2]uint64{1, 3}]; got.Count != 1 {
		t.Errorf("pair {1,3} count = %d, want 1", got.Count)
	}
}

func TestRecompute_NoSelfPairs(t *testing.T) {
	events := &fakeEventStatsRepo{orders: [][]uint64{
		{7, 7, 8}, // duplicate line items for the same product
		{9},       // single-product order contributes nothing
	}}
	copurchase := &fakeCopurchaseWriter{}

	_, err := NewService(events, &fakePopularityWriter{}, copurchase).Recompute(context.Background(), time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	if len(copurchase.pairs) != 2 {
		t.Fatalf("expected pair {7,8} in two directions only, got %v", copurchase.pairs)
	}
	for _, p := range copurchase.pairs {
		if p.ProductID == p.CopurchasedProductID {
			t.Fatalf("self-pair emitted: %+v", p)
		}
	}
}

func TestRecompute_EventScanFailureSurfaces(t *testing.T) {
	events := &fakeEventStatsRepo{countsErr: errors.New("relation does not exist")}

	_, err := NewService(events, &fakePopularityWriter{}, &fakeCopurchaseWriter{}).Recompute(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected error from failed event scan")
	}
}

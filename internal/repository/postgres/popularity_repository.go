package postgres

import (
	"context"
	"fmt"
	"time"

	"marketRecs/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PopularityRepository struct {
	DB *gorm.DB
}

func NewPopularityRepository(db *gorm.DB) *PopularityRepository {
	return &PopularityRepository{
		DB: db,
	}
}

func (r *PopularityRepository) TopByViewScore(ctx context.Context, categoryID uint64, limit int) ([]domain.ProductPopularity, error) {
	return r.top(ctx, "view_score", categoryID, limit)
}

func (r *PopularityRepository) TopByPurchaseScore(ctx context.Context, categoryID uint64, limit int) ([]domain.ProductPopularity, error) {
	return r.top(ctx, "purchase_score", categoryID, limit)
}

func (r *PopularityRepository) top(ctx context.Context, scoreColumn string, categoryID uint64, limit int) ([]domain.ProductPopularity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Model(&domain.ProductPopularity{})
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	var rows []domain.ProductPopularity
	if err := query.
		Order(scoreColumn + " DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query product_popularity: %w", err)
	}

	return rows, nil
}

// UpsertAll replaces the aggregate rows produced by a recompute run.
func (r *PopularityRepository) UpsertAll(ctx context.Context, rows []domain.ProductPopularity) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(rows) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_id", "view_count", "purchase_count", "view_score", "purchase_score", "computed_at"}),
	}).CreateInBatches(rows, 500).Error
	if err != nil {
		return fmt.Errorf("failed to upsert product_popularity: %w", err)
	}

	return nil
}

// IncrementView bumps the live counters between recomputes, keeping the
// derived scores consistent with the recompute formulas.
func (r *PopularityRepository) IncrementView(ctx context.Context, productID, categoryID uint64) error {
	return r.increment(ctx, productID, categoryID, domain.ProductPopularity{
		ProductID:  productID,
		CategoryID: categoryID,
		ViewCount:  1,
		ViewScore:  1,
		// half-weight view contribution to the purchase score
		PurchaseScore: 0.5,
		ComputedAt:    time.Now(),
	}, map[string]any{
		"view_count":     gorm.Expr("product_popularity.view_count + 1"),
		"view_score":     gorm.Expr("product_popularity.view_score + 1"),
		"purchase_score": gorm.Expr("product_popularity.purchase_score + 0.5"),
	})
}

func (r *PopularityRepository) IncrementPurchase(ctx context.Context, productID, categoryID uint64) error {
	return r.increment(ctx, productID, categoryID, domain.ProductPopularity{
		ProductID:     productID,
		CategoryID:    categoryID,
		PurchaseCount: 1,
		PurchaseScore: 2,
		ComputedAt:    time.Now(),
	}, map[string]any{
		"purchase_count": gorm.Expr("product_popularity.purchase_count + 1"),
		"purchase_score": gorm.Expr("product_popularity.purchase_score + 2"),
	})
}

func (r *PopularityRepository) increment(ctx context.Context, productID, categoryID uint64, insert domain.ProductPopularity, updates map[string]any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&insert).Error
	if err != nil {
		return fmt.Errorf("failed to increment product_popularity for product %d: %w", productID, err)
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"marketRecs/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewedProductRepository struct {
	DB *gorm.DB
}

func NewViewedProductRepository(db *gorm.DB) *ViewedProductRepository {
	return &ViewedProductRepository{
		DB: db,
	}
}

func (r *ViewedProductRepository) RecentByUser(ctx context.Context, userID uint64, limit int) ([]domain.UserViewedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.UserViewedProduct
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_viewed_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query user_viewed_products: %w", err)
	}

	return rows, nil
}

func (r *ViewedProductRepository) UpsertView(ctx context.Context, view domain.UserViewedProduct) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"view_count":     gorm.Expr("user_viewed_products.view_count + 1"),
			"last_viewed_at": view.LastViewedAt,
			"category_id":    view.CategoryID,
			"brand_id":       view.BrandID,
		}),
	}).Create(&view).Error
	if err != nil {
		return fmt.Errorf("failed to upsert viewed product: %w", err)
	}

	return nil
}

func (r *ViewedProductRepository) MarkInteraction(ctx context.Context, userID, productID uint64, eventType string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var updates map[string]any
	switch eventType {
	case domain.EventAddToCart:
		updates = map[string]any{"added_to_cart": true}
	case domain.EventAddToWishlist:
		updates = map[string]any{"added_to_wishlist": true}
	case domain.EventPurchase:
		updates = map[string]any{"purchased": true, "purchased_at": at}
	default:
		return nil
	}

	err := r.DB.WithContext(ctx).
		Model(&domain.UserViewedProduct{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to mark interaction: %w", err)
	}

	return nil
}

func (r *ViewedProductRepository) AddEngagement(ctx context.Context, userID, productID uint64, viewDuration, scrollDepth int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Model(&domain.UserViewedProduct{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{
			"total_view_duration": gorm.Expr("user_viewed_products.total_view_duration + ?", viewDuration),
			"max_scroll_depth":    gorm.Expr("GREATEST(user_viewed_products.max_scroll_depth, ?)", scrollDepth),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record engagement: %w", err)
	}

	return nil
}

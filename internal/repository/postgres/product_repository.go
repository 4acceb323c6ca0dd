package postgres

import (
	"context"
	"errors"
	"fmt"

	"marketRecs/domain"

	"gorm.io/gorm"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint64) (domain.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, false, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product

	err := r.DB.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Product{}, false, nil
		}
		return domain.Product{}, false, fmt.Errorf("failed to find product: %w", err)
	}

	return product, true, nil
}

// UpsellCandidates returns active, in-stock, priced products inside the
// [minPrice, maxPrice] band sharing at least one hierarchy level with the
// base product. Ordered by effective price ascending so the caller's stable
// score sort has a deterministic underlying order.
func (r *ProductRepository) UpsellCandidates(ctx context.Context, base domain.Product, minPrice, maxPrice float64, limit int) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).
		Where("id != ?", base.ID).
		Where("status = ?", domain.ProductStatusActive).
		Where("call_for_price = false").
		Where(
			r.DB.Where("final_price > 0 AND final_price >= ? AND final_price <= ?", minPrice, maxPrice).
				Or("(final_price IS NULL OR final_price <= 0) AND unit_price >= ? AND unit_price <= ?", minPrice, maxPrice),
		).
		Where(
			r.DB.Where("qty > 0").
				Or("stock IN ?", []string{"in_stock", "available", "In Stock", "Available"}),
		)

	// Hierarchy pre-filter: same category always qualifies; same
	// subcategory/child-category only when the base product has one.
	hierarchy := r.DB.Where("category_id = ?", base.CategoryID)
	if base.SubcategoryID != 0 {
		hierarchy = hierarchy.Or("subcategory_id = ?", base.SubcategoryID)
	}
	if base.ChildCategoryID != 0 {
		hierarchy = hierarchy.Or("child_category_id = ?", base.ChildCategoryID)
	}
	query = query.Where(hierarchy)

	var candidates []domain.Product
	err := query.
		Order("COALESCE(NULLIF(final_price, 0), unit_price) ASC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query upsell candidates: %w", err)
	}

	return candidates, nil
}

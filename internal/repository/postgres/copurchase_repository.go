package postgres

import (
	"context"
	"fmt"

	"marketRecs/business/recommendation"
	"marketRecs/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CopurchaseRepository struct {
	DB *gorm.DB
}

func NewCopurchaseRepository(db *gorm.DB) *CopurchaseRepository {
	return &CopurchaseRepository{
		DB: db,
	}
}

func (r *CopurchaseRepository) ListByProduct(ctx context.Context, productID uint64, limit int) ([]domain.ProductCopurchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.ProductCopurchase
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("score DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query product_copurchase: %w", err)
	}

	return rows, nil
}

func (r *CopurchaseRepository) SumScoresForSeeds(ctx context.Context, seedIDs []uint64, limit int) ([]recommendation.CopurchaseScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []recommendation.CopurchaseScore
	err := r.DB.WithContext(ctx).
		Model(&domain.ProductCopurchase{}).
		Select("copurchased_product_id AS product_id, SUM(score) AS total_score").
		Where("product_id IN ?", seedIDs).
		Group("copurchased_product_id").
		Order("total_score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum copurchase scores: %w", err)
	}

	return rows, nil
}

func (r *CopurchaseRepository) UpsertPairs(ctx context.Context, pairs []domain.ProductCopurchase) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(pairs) == 0 {
		return nil
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "copurchased_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "score"}),
	}).CreateInBatches(pairs, 500).Error
	if err != nil {
		return fmt.Errorf("failed to upsert product_copurchase: %w", err)
	}

	return nil
}

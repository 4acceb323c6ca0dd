package postgres

import (
	"context"
	"fmt"

	"marketRecs/domain"

	"gorm.io/gorm"
)

type ImpressionRepository struct {
	DB *gorm.DB
}

func NewImpressionRepository(db *gorm.DB) *ImpressionRepository {
	return &ImpressionRepository{
		DB: db,
	}
}

func (r *ImpressionRepository) Save(ctx context.Context, impression *domain.RecommendationImpression) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(impression).Error; err != nil {
		return fmt.Errorf("failed to save impression: %w", err)
	}

	return nil
}

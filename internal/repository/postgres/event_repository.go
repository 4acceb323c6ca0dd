package postgres

import (
	"context"
	"fmt"
	"time"

	"marketRecs/business/aggregate"
	"marketRecs/domain"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

func (r *EventRepository) Save(ctx context.Context, event *domain.ProductEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to save product event: %w", err)
	}

	return nil
}

func (r *EventRepository) RecentViewsBySession(ctx context.Context, sessionID string, limit int) ([]domain.ProductEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.ProductEvent
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("event_type = ?", domain.EventProductView).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query session views: %w", err)
	}

	return events, nil
}

func (r *EventRepository) ViewPurchaseCountsSince(ctx context.Context, since time.Time) ([]aggregate.ProductEventCounts, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []aggregate.ProductEventCounts
	err := r.DB.WithContext(ctx).
		Model(&domain.ProductEvent{}).
		Select(`product_events.product_id,
			COALESCE(MAX(products.category_id), 0) AS category_id,
			SUM(CASE WHEN product_events.event_type = ? THEN 1 ELSE 0 END) AS view_count,
			SUM(CASE WHEN product_events.event_type = ? THEN 1 ELSE 0 END) AS purchase_count`,
			domain.EventProductView, domain.EventPurchase).
		Joins("LEFT JOIN products ON products.id = product_events.product_id").
		Where("product_events.occurred_at >= ?", since).
		Group("product_events.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate event counts: %w", err)
	}

	return rows, nil
}

// OrderProductIDsSince extracts the product id set of every purchase event
// since the cutoff from the event's meta payload (order_product_ids).
func (r *EventRepository) OrderProductIDsSince(ctx context.Context, since time.Time) ([][]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.ProductEvent
	err := r.DB.WithContext(ctx).
		Select("meta").
		Where("event_type = ?", domain.EventPurchase).
		Where("occurred_at >= ?", since).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase events: %w", err)
	}

	orders := make([][]uint64, 0, len(events))
	for _, ev := range events {
		raw, ok := ev.Meta["order_product_ids"].([]any)
		if !ok {
			continue
		}

		ids := make([]uint64, 0, len(raw))
		for _, v := range raw {
			// JSONB numbers decode as float64
			if f, ok := v.(float64); ok && f > 0 {
				ids = append(ids, uint64(f))
			}
		}
		if len(ids) > 1 {
			orders = append(orders, ids)
		}
	}

	return orders, nil
}

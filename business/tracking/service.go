package tracking

import (
	"context"
	"fmt"
	"time"

	"marketRecs/domain"
	"marketRecs/pkg/logger"
)

// Visit carries the request-scoped facts the excluded HTTP layer already
// extracted: who (if logged in), which session, and client details.
type Visit struct {
	UserID     uint64
	SessionID  string
	IPAddress  string
	UserAgent  string
	Referrer   string
	DeviceType string
	Meta       map[string]any
}

// Engagement is the incremental on-page signal reported by the storefront.
type Engagement struct {
	ViewDuration  int
	ScrollDepth   int
	ImageViewed   bool
	SpecsViewed   bool
	ReviewsViewed bool
}

type EventRepository interface {
	Save(ctx context.Context, event *domain.ProductEvent) error
}

type ViewedProductRepository interface {
	// Insert or bump the (user, product) row: view_count+1, last_viewed_at.
	UpsertView(ctx context.Context, view domain.UserViewedProduct) error
	MarkInteraction(ctx context.Context, userID, productID uint64, eventType string, at time.Time) error
	AddEngagement(ctx context.Context, userID, productID uint64, viewDuration, scrollDepth int) error
}

type PopularityCounter interface {
	IncrementView(ctx context.Context, productID, categoryID uint64) error
	IncrementPurchase(ctx context.Context, productID, categoryID uint64) error
}

// Service appends behavioral events and keeps the per-user view aggregate
// current. The event log is the source of truth; the live counter bumps on
// product_popularity only tide the scores over until the next full
// recompute rebuilds them from events.
type Service struct {
	eventRepo  EventRepository
	viewedRepo ViewedProductRepository
	popularity PopularityCounter
}

func NewService(eventRepo EventRepository, viewedRepo ViewedProductRepository, popularity PopularityCounter) *Service {
	return &Service{
		eventRepo:  eventRepo,
		viewedRepo: viewedRepo,
		popularity: popularity,
	}
}

// TrackView records a product view. The event append is the only required
// write; aggregate bumps are best-effort and only logged on failure.
//
// TODO: batch the popularity increments — one UPDATE per page view contends
// on hot products under load.
func (s *Service) TrackView(ctx context.Context, product domain.Product, visit Visit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	event := domain.ProductEvent{
		EventType:    domain.EventProductView,
		ProductID:    product.ID,
		UserID:       visit.UserID,
		SessionID:    visit.SessionID,
		CategoryID:   product.CategoryID,
		BrandID:      product.BrandID,
		ProductPrice: product.EffectivePrice(),
		IPAddress:    visit.IPAddress,
		UserAgent:    visit.UserAgent,
		Referrer:     visit.Referrer,
		DeviceType:   visit.DeviceType,
		OccurredAt:   now,
		Meta:         visit.Meta,
	}

	if err := s.eventRepo.Save(ctx, &event); err != nil {
		return fmt.Errorf("failed to save view event: %w", err)
	}

	if visit.UserID != 0 {
		view := domain.UserViewedProduct{
			UserID:        visit.UserID,
			ProductID:     product.ID,
			CategoryID:    product.CategoryID,
			BrandID:       product.BrandID,
			FirstViewedAt: now,
			LastViewedAt:  now,
			ViewCount:     1,
		}
		if err := s.viewedRepo.UpsertView(ctx, view); err != nil {
			logger.Error("failed to upsert viewed product", "user_id", visit.UserID, "product_id", product.ID, "error", err)
		}
	}

	if err := s.popularity.IncrementView(ctx, product.ID, product.CategoryID); err != nil {
		logger.Error("failed to bump view popularity", "product_id", product.ID, "error", err)
	}

	return nil
}

// TrackInteraction records cart/wishlist/share style events and flips the
// matching flags on the user's view aggregate.
func (s *Service) TrackInteraction(ctx context.Context, eventType string, product domain.Product, visit Visit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	event := domain.ProductEvent{
		EventType:    eventType,
		ProductID:    product.ID,
		UserID:       visit.UserID,
		SessionID:    visit.SessionID,
		CategoryID:   product.CategoryID,
		BrandID:      product.BrandID,
		ProductPrice: product.EffectivePrice(),
		IPAddress:    visit.IPAddress,
		UserAgent:    visit.UserAgent,
		DeviceType:   visit.DeviceType,
		OccurredAt:   now,
		Meta:         visit.Meta,
	}

	if err := s.eventRepo.Save(ctx, &event); err != nil {
		return fmt.Errorf("failed to save interaction event: %w", err)
	}

	if visit.UserID != 0 {
		switch eventType {
		case domain.EventAddToCart, domain.EventAddToWishlist, domain.EventPurchase:
			if err := s.viewedRepo.MarkInteraction(ctx, visit.UserID, product.ID, eventType, now); err != nil {
				logger.Error("failed to mark interaction", "user_id", visit.UserID, "product_id", product.ID, "error", err)
			}
		}
	}

	if eventType == domain.EventPurchase {
		if err := s.popularity.IncrementPurchase(ctx, product.ID, product.CategoryID); err != nil {
			logger.Error("failed to bump purchase popularity", "product_id", product.ID, "error", err)
		}
	}

	return nil
}

// TrackEngagement folds on-page signals into the user's view aggregate.
// Anonymous engagement has no aggregate row to update and is dropped.
func (s *Service) TrackEngagement(ctx context.Context, userID, productID uint64, engagement Engagement) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if userID == 0 {
		return nil
	}

	if err := s.viewedRepo.AddEngagement(ctx, userID, productID, engagement.ViewDuration, engagement.ScrollDepth); err != nil {
		return fmt.Errorf("failed to record engagement: %w", err)
	}

	return nil
}

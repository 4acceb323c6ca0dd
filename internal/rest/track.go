package rest

import (
	"context"
	"net/http"
	"time"

	"marketRecs/business/tracking"
	"marketRecs/domain"
	"marketRecs/internal/middleware"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	TrackingService interface {
		TrackView(ctx context.Context, product domain.Product, visit tracking.Visit) error
		TrackInteraction(ctx context.Context, eventType string, product domain.Product, visit tracking.Visit) error
		TrackEngagement(ctx context.Context, userID, productID uint64, engagement tracking.Engagement) error
	}

	ProductFinder interface {
		FindByID(ctx context.Context, id uint64) (domain.Product, bool, error)
	}

	TrackHandler struct {
		validate *validator.Validate
		service  TrackingService
		products ProductFinder
		timeout  time.Duration
	}

	TrackViewRequest struct {
		ProductID uint64         `json:"product_id" validate:"required"`
		UserID    uint64         `json:"user_id"`
		Meta      map[string]any `json:"meta"`
	}

	TrackInteractionRequest struct {
		ProductID uint64         `json:"product_id" validate:"required"`
		UserID    uint64         `json:"user_id"`
		EventType string         `json:"event_type" validate:"required,oneof=add_to_cart add_to_wishlist remove_from_cart purchase share click"`
		Metadata  map[string]any `json:"metadata"`
	}

	TrackEngagementRequest struct {
		ProductID     uint64 `json:"product_id" validate:"required"`
		UserID        uint64 `json:"user_id"`
		ViewDuration  int    `json:"view_duration" validate:"gte=0"`
		ScrollDepth   int    `json:"scroll_depth" validate:"gte=0,lte=100"`
		ImageViewed   bool   `json:"image_viewed"`
		SpecsViewed   bool   `json:"specs_viewed"`
		ReviewsViewed bool   `json:"reviews_viewed"`
	}
)

func NewTrackHandler(service TrackingService, products ProductFinder) *TrackHandler {
	return &TrackHandler{
		validate: validator.New(),
		service:  service,
		products: products,
		timeout:  10 * time.Second,
	}
}

// POST /api/v1/track/view
func (h *TrackHandler) TrackView(c echo.Context) error {
	var req TrackViewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, found, err := h.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !found {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "product not found"})
	}

	if err := h.service.TrackView(ctx, product, h.visit(c, req.UserID, req.Meta)); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("view recorded"))
}

// POST /api/v1/track/interaction
func (h *TrackHandler) TrackInteraction(c echo.Context) error {
	var req TrackInteractionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	product, found, err := h.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !found {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "product not found"})
	}

	if err := h.service.TrackInteraction(ctx, req.EventType, product, h.visit(c, req.UserID, req.Metadata)); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("interaction recorded"))
}

// POST /api/v1/track/engagement
func (h *TrackHandler) TrackEngagement(c echo.Context) error {
	var req TrackEngagementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	engagement := tracking.Engagement{
		ViewDuration:  req.ViewDuration,
		ScrollDepth:   req.ScrollDepth,
		ImageViewed:   req.ImageViewed,
		SpecsViewed:   req.SpecsViewed,
		ReviewsViewed: req.ReviewsViewed,
	}

	if err := h.service.TrackEngagement(ctx, req.UserID, req.ProductID, engagement); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("engagement recorded"))
}

func (h *TrackHandler) visit(c echo.Context, userID uint64, meta map[string]any) tracking.Visit {
	return tracking.Visit{
		UserID:     userID,
		SessionID:  middleware.SessionID(c),
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
		Referrer:   c.Request().Referer(),
		DeviceType: c.Request().Header.Get("X-Device-Type"),
		Meta:       meta,
	}
}

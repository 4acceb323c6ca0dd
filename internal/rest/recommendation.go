package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketRecs/business/recommendation"
	"marketRecs/domain"
	"marketRecs/internal/middleware"
	"marketRecs/pkg/logger"
	"marketRecs/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

type (
	RecommendationService interface {
		Recommend(ctx context.Context, params domain.RecommendationParams) ([]domain.Recommendation, error)
	}

	ImpressionRecorder interface {
		Record(impression domain.RecommendationImpression)
	}

	RecommendationHandler struct {
		validate    *validator.Validate
		service     RecommendationService
		impressions ImpressionRecorder
		timeout     time.Duration
	}

	RecommendQuery struct {
		UserID     uint64   `query:"user_id"`
		ProductID  uint64   `query:"product_id"`
		ProductIDs []uint64 `query:"product_ids"`
		CategoryID uint64   `query:"category_id"`
		SessionID  string   `query:"session_id"`
		Context    string   `query:"context" validate:"required,oneof=home product_page cart email checkout"`
		Algorithm  string   `query:"algorithm"`
		Limit      int      `query:"limit"`
		Variant    string   `query:"variant"`
	}
)

func NewRecommendationHandler(service RecommendationService, impressions ImpressionRecorder) *RecommendationHandler {
	return &RecommendationHandler{
		validate:    validator.New(),
		service:     service,
		impressions: impressions,
		timeout:     10 * time.Second,
	}
}

// GET /api/v1/recommendations?context=product_page&product_id=42
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	}()

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	params := h.buildParams(c, q)
	recommendationID := uuid.NewString()

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.service.Recommend(ctx, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	algorithmUsed := params.Algorithm
	if len(results) > 0 {
		algorithmUsed = results[0].Algorithm
	}

	h.recordImpression(recommendationID, algorithmUsed, params, results)

	c.Response().Header().Set("X-Recommendation-Id", recommendationID)
	c.Response().Header().Set("X-Recommendation-Algorithm", algorithmUsed)
	c.Response().Header().Set("X-Recommendation-Variant", params.Variant)

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}

// GET /api/v1/recently-viewed — shorthand that always routes through the
// previously-viewed algorithm.
func (h *RecommendationHandler) RecentlyViewed(c echo.Context) error {
	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	q.Context = domain.ContextHome
	q.Algorithm = recommendation.KeyPreviouslyViewed
	params := h.buildParams(c, q)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	results, err := h.service.Recommend(ctx, params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(results))
}

func (h *RecommendationHandler) buildParams(c echo.Context, q RecommendQuery) domain.RecommendationParams {
	sessionID := q.SessionID
	if q.UserID == 0 && sessionID == "" {
		sessionID = middleware.SessionID(c)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	return domain.RecommendationParams{
		UserID:     q.UserID,
		SessionID:  sessionID,
		ProductID:  q.ProductID,
		ProductIDs: q.ProductIDs,
		CategoryID: q.CategoryID,
		Context:    q.Context,
		Algorithm:  q.Algorithm,
		Variant:    q.Variant,
		Limit:      limit,
	}
}

func (h *RecommendationHandler) recordImpression(recommendationID, algorithm string, params domain.RecommendationParams, results []domain.Recommendation) {
	items, err := json.Marshal(results)
	if err != nil {
		logger.Error("failed to marshal impression items", "recommendation_id", recommendationID, "error", err)
		return
	}

	h.impressions.Record(domain.RecommendationImpression{
		RecommendationID: recommendationID,
		Algorithm:        algorithm,
		Variant:          params.Variant,
		UserID:           params.UserID,
		SessionID:        params.SessionID,
		Items:            items,
		ShownAt:          time.Now(),
	})
}

package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"marketRecs/business/aggregate"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	RecomputeService interface {
		Recompute(ctx context.Context, since time.Time) (aggregate.Stats, error)
	}

	RecomputeHandler struct {
		service RecomputeService
		timeout time.Duration
	}
)

func NewRecomputeHandler(service RecomputeService) *RecomputeHandler {
	return &RecomputeHandler{
		service: service,
		// full event-log scans take a while on large shops
		timeout: 5 * time.Minute,
	}
}

// POST /api/v1/admin/recommendations/recompute?days=30
func (h *RecomputeHandler) Recompute(c echo.Context) error {
	days := 30
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "days must be a positive integer"})
		}
		days = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.service.Recompute(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

package router

import (
	"marketRecs/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	api.GET("/recommendations", handler.Recommend)
	api.GET("/recently-viewed", handler.RecentlyViewed)
}

func SetupTrackingRoutes(api *echo.Group, handler *rest.TrackHandler) {
	track := api.Group("/track")

	track.POST("/view", handler.TrackView)
	track.POST("/engagement", handler.TrackEngagement)
	track.POST("/interaction", handler.TrackInteraction)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.RecomputeHandler, authRequired echo.MiddlewareFunc) {
	admin := api.Group("/admin/recommendations", authRequired)

	admin.POST("/recompute", handler.Recompute)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketRecs/app/echo-server/router"
	"marketRecs/business/aggregate"
	"marketRecs/business/recommendation"
	"marketRecs/business/tracking"
	"marketRecs/domain"
	"marketRecs/internal/middleware"
	psqlRepo "marketRecs/internal/repository/postgres"
	redisRepo "marketRecs/internal/repository/redis"
	"marketRecs/internal/rest"
	"marketRecs/internal/telemetry"
	"marketRecs/pkg/config"
	"marketRecs/pkg/database"
	redisdb "marketRecs/pkg/database/redis"
	"marketRecs/pkg/logger"
	"marketRecs/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting recommendation service", "version", cfg.App.Version)

	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.AutoMigrate(
		&domain.ProductEvent{},
		&domain.ProductPopularity{},
		&domain.ProductCopurchase{},
		&domain.UserViewedProduct{},
		&domain.RecommendationImpression{},
	); err != nil {
		logger.Fatal("Failed to migrate schema", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisdb.CloseRedisClient(redisClient)

	// Init repo
	productRepo := psqlRepo.NewProductRepository(db)
	popularityRepo := psqlRepo.NewPopularityRepository(db)
	copurchaseRepo := psqlRepo.NewCopurchaseRepository(db)
	eventRepo := psqlRepo.NewEventRepository(db)
	viewedRepo := psqlRepo.NewViewedProductRepository(db)
	impressionRepo := psqlRepo.NewImpressionRepository(db)
	recCache := redisRepo.NewRecommendationCache(redisClient)

	// Init service
	recConfig := recommendation.Config{
		Enabled:           cfg.Recommendation.Enabled,
		DefaultsByContext: cfg.Recommendation.DefaultsByContext,
		DefaultAlgorithm:  cfg.Recommendation.DefaultAlgorithm,
		CacheTTL:          cfg.Recommendation.CacheTTL,
	}

	recService, err := recommendation.NewService(recCache, recConfig,
		recommendation.NewUpsell(productRepo),
		recommendation.NewCrossSell(copurchaseRepo),
		recommendation.NewFrequentlyBought(copurchaseRepo),
		recommendation.NewMostViewed(popularityRepo),
		recommendation.NewMostPurchased(popularityRepo),
		recommendation.NewPreviouslyViewed(viewedRepo, eventRepo),
	)
	if err != nil {
		logger.Fatal("Invalid recommendation configuration", "error", err)
	}

	trackingService := tracking.NewService(eventRepo, viewedRepo, popularityRepo)
	aggregateService := aggregate.NewService(eventRepo, popularityRepo, copurchaseRepo)

	// Async impression writer
	writerCtx, stopWriter := context.WithCancel(context.Background())
	impressionWriter := telemetry.NewImpressionWriter(impressionRepo, cfg.Recommendation.ImpressionBuffer)
	impressionWriter.Start(writerCtx)

	// Init handler
	recHandler := rest.NewRecommendationHandler(recService, impressionWriter)
	trackHandler := rest.NewTrackHandler(trackingService, productRepo)
	recomputeHandler := rest.NewRecomputeHandler(aggregateService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.EnsureSession(cfg.Recommendation.SessionTTL))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recHandler)
	router.SetupTrackingRoutes(api, trackHandler)
	router.SetupAdminRoutes(api, recomputeHandler, middleware.AuthMiddleware(cfg.JWT.SecretKey))

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Flush buffered impressions before exit
	stopWriter()
	impressionWriter.Wait()

	logger.Info("Server stopped")
}

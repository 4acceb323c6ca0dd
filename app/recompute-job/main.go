package main

import (
	"context"
	"flag"
	"log"
	"time"

	"marketRecs/business/aggregate"
	psqlRepo "marketRecs/internal/repository/postgres"
	"marketRecs/pkg/config"
	"marketRecs/pkg/database"
	"marketRecs/pkg/logger"
)

// One-shot rebuild of the popularity and co-purchase aggregates, meant to
// run from cron. The HTTP server exposes the same operation on its admin
// surface for manual runs.
func main() {
	days := flag.Int("days", 30, "recompute aggregates from events of the last N days")
	timeout := flag.Duration("timeout", 15*time.Minute, "abort the run after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	eventRepo := psqlRepo.NewEventRepository(db)
	popularityRepo := psqlRepo.NewPopularityRepository(db)
	copurchaseRepo := psqlRepo.NewCopurchaseRepository(db)

	service := aggregate.NewService(eventRepo, popularityRepo, copurchaseRepo)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stats, err := service.Recompute(ctx, time.Now().AddDate(0, 0, -*days))
	if err != nil {
		logger.Fatal("Recompute failed", "error", err)
	}

	logger.Info("Recompute complete",
		"popularity_rows", stats.PopularityRows,
		"copurchase_pairs", stats.CopurchasePairs,
	)
}

// Command cache recomputes the latest prediction of every product once and exits.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shelfpulse/internal/inference"
	"shelfpulse/internal/repository"
	"shelfpulse/internal/service"
	"shelfpulse/pkg/config"
	"shelfpulse/pkg/logger"
	"shelfpulse/pkg/postgres"
	"shelfpulse/pkg/rediscache"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	policy, err := service.ParseBatchPolicy(cfg.Batch.Policy)
	if err != nil {
		appLogger.Fatal("Invalid batch policy", zap.Error(err))
	}

	models, err := inference.LoadModels(cfg.Models.ManifestPath)
	if err != nil {
		appLogger.Fatal("Failed to load models", zap.Error(err))
	}
	gateway, err := inference.NewGateway(models)
	if err != nil {
		appLogger.Fatal("Model set rejected", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	// a failed purge only leaves stale lookups until their TTL expires
	lookup, err := rediscache.New(ctx, cfg.Redis.URL, "shelfpulse:lookup:", cfg.Redis.TTL, appLogger)
	if err != nil {
		appLogger.Warn("Redis unavailable, lookup cache will not be purged", zap.Error(err))
		lookup = rediscache.Disabled()
	}
	defer lookup.Close()

	predictionRepo := repository.NewPredictionRepository(appLogger)
	runner := service.NewBatchRunner(
		db,
		repository.NewProductRepository(appLogger),
		service.NewCacheService(predictionRepo, appLogger),
		gateway,
		lookup,
		policy,
		appLogger,
	)

	res, err := runner.Run(ctx)
	if res != nil {
		fmt.Printf("run %s (%s): %d of %d products cached, %d failed\n",
			res.RunID, res.Policy, res.SuccessCount, res.Total, res.FailureCount)
		for _, f := range res.Failures {
			fmt.Printf("  %s: %v\n", f.SKU, f.Err)
		}
	}
	if err != nil {
		appLogger.Error("Batch run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

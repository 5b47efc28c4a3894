package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shelfpulse/internal/api"
	"shelfpulse/internal/api/handlers"
	"shelfpulse/internal/inference"
	"shelfpulse/internal/repository"
	"shelfpulse/internal/service"
	"shelfpulse/pkg/config"
	"shelfpulse/pkg/logger"
	"shelfpulse/pkg/postgres"
	"shelfpulse/pkg/rediscache"

	"go.uber.org/zap"
)

// @title ShelfPulse API
// @version 1.0
// @description Shelf-level predictions for perishable retail inventory

// @host localhost:8080
// @BasePath /api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting ShelfPulse service")

	policy, err := service.ParseBatchPolicy(cfg.Batch.Policy)
	if err != nil {
		appLogger.Fatal("Invalid batch policy", zap.Error(err))
	}

	// Models are loaded once and never reloaded while serving
	models, err := inference.LoadModels(cfg.Models.ManifestPath)
	if err != nil {
		appLogger.Fatal("Failed to load models", zap.String("manifest", cfg.Models.ManifestPath), zap.Error(err))
	}
	gateway, err := inference.NewGateway(models)
	if err != nil {
		appLogger.Fatal("Model set rejected", zap.Error(err))
	}
	appLogger.Info("Models loaded", zap.String("version", gateway.Version()))

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	lookup, err := rediscache.New(ctx, cfg.Redis.URL, "shelfpulse:lookup:", cfg.Redis.TTL, logger.Component("rediscache"))
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer lookup.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(logger.Component("repository"))
	predictionRepo := repository.NewPredictionRepository(logger.Component("repository"))

	// Initialize services
	cacheService := service.NewCacheService(predictionRepo, appLogger)
	predictionService := service.NewPredictionService(gateway, appLogger)
	catalogService := service.NewCatalogService(db, productRepo, predictionRepo, cacheService, gateway, lookup,
		cfg.Lookup.DefaultLimit, cfg.Lookup.MaxLimit, appLogger)
	runner := service.NewBatchRunner(db, productRepo, cacheService, gateway, lookup, policy, logger.Component("batch"))

	// Initialize handlers
	predictHandler := handlers.NewPredictHandler(predictionService, appLogger)
	productHandler := handlers.NewProductHandler(catalogService, appLogger)
	cacheHandler := handlers.NewCacheHandler(runner, appLogger)

	// Setup router
	app := api.SetupRouter(&cfg.Server, predictHandler, productHandler, cacheHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr), zap.String("batch_policy", string(policy)))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

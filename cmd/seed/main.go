// Command seed loads products from a CSV file into the catalog.
//
//	seed -file products.csv
//
// The file needs a sku column; category and feature columns are optional.
// Existing products with the same SKU are overwritten.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"shelfpulse/internal/repository"
	"shelfpulse/internal/service"
	"shelfpulse/pkg/config"
	"shelfpulse/pkg/logger"
	"shelfpulse/pkg/postgres"
	"shelfpulse/pkg/rediscache"

	"go.uber.org/zap"
)

func main() {
	path := flag.String("file", "products.csv", "product CSV to ingest")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}

	// Ingested rows retire the lookups the server has cached
	lookup, err := rediscache.New(ctx, cfg.Redis.URL, "shelfpulse:lookup:", cfg.Redis.TTL, logger.Component("rediscache"))
	if err != nil {
		appLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer lookup.Close()

	f, err := os.Open(*path)
	if err != nil {
		appLogger.Fatal("Failed to open product file", zap.String("file", *path), zap.Error(err))
	}
	defer f.Close()

	appLogger.Info("Starting product ingestion...", zap.String("file", *path))

	ingest := service.NewIngestService(db, repository.NewProductRepository(appLogger), lookup, appLogger)
	n, err := ingest.IngestCSV(ctx, f)
	if err != nil {
		appLogger.Fatal("Failed to ingest products", zap.Error(err))
	}

	appLogger.Info("Product ingestion completed successfully!", zap.Int("products", n))
}

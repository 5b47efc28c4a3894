package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db Querier, logger *zap.Logger) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info("Database schema is up to date")
	return nil
}

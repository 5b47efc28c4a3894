package service

import (
	"context"

	"shelfpulse/internal/inference"
	"shelfpulse/internal/models"
	"shelfpulse/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CacheService maintains the latest prediction of each product.
type CacheService struct {
	predictions PredictionStore
	logger      *zap.Logger
}

func NewCacheService(predictions PredictionStore, logger *zap.Logger) *CacheService {
	return &CacheService{
		predictions: predictions,
		logger:      logger,
	}
}

// Supersede replaces the latest prediction of a product with a new one. Both
// the demotion and the insert run on q; the caller owns the transaction and
// must commit or roll back the pair together.
func (s *CacheService) Supersede(ctx context.Context, q postgres.Querier, productID int64, res *inference.Result, runID *uuid.UUID) (*models.Prediction, error) {
	demoted, err := s.predictions.DemoteLatest(ctx, q, productID)
	if err != nil {
		return nil, storageErr("demote latest prediction", err)
	}
	if demoted > 1 {
		s.logger.Warn("Product had more than one latest prediction",
			zap.Int64("product_id", productID),
			zap.Int64("demoted", demoted),
		)
	}

	pred := newPrediction(productID, res, runID)
	if err := s.predictions.Insert(ctx, q, pred); err != nil {
		return nil, storageErr("insert prediction", err)
	}
	return pred, nil
}

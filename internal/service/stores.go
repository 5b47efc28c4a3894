package service

import (
	"context"

	"shelfpulse/internal/models"
	"shelfpulse/internal/repository"
	"shelfpulse/pkg/postgres"
)

// ProductStore is implemented by repository.ProductRepository.
type ProductStore interface {
	List(ctx context.Context, q postgres.Querier) ([]*models.Product, error)
	GetBySKU(ctx context.Context, q postgres.Querier, sku string) (*models.Product, error)
	Search(ctx context.Context, q postgres.Querier, filter repository.ProductFilter) ([]*models.ProductPrediction, error)
}

// PredictionStore is implemented by repository.PredictionRepository.
type PredictionStore interface {
	DemoteLatest(ctx context.Context, q postgres.Querier, productID int64) (int64, error)
	Insert(ctx context.Context, q postgres.Querier, p *models.Prediction) error
	GetLatest(ctx context.Context, q postgres.Querier, productID int64) (*models.Prediction, error)
	History(ctx context.Context, q postgres.Querier, productID int64, limit uint64) ([]*models.Prediction, error)
}

// ProductWriter is implemented by repository.ProductRepository.
type ProductWriter interface {
	Upsert(ctx context.Context, q postgres.Querier, p *models.Product) (int64, error)
}

var (
	_ ProductStore    = (*repository.ProductRepository)(nil)
	_ PredictionStore = (*repository.PredictionRepository)(nil)
	_ ProductWriter   = (*repository.ProductRepository)(nil)
)

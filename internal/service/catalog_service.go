package service

import (
	"context"
	"errors"
	"strconv"

	"shelfpulse/internal/dto"
	"shelfpulse/internal/inference"
	"shelfpulse/internal/repository"
	"shelfpulse/pkg/postgres"
	"shelfpulse/pkg/rediscache"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CatalogService serves products together with their cached predictions.
type CatalogService struct {
	db           postgres.DB
	products     ProductStore
	predictions  PredictionStore
	cache        *CacheService
	gateway      *inference.Gateway
	lookup       *rediscache.Cache
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewCatalogService(
	db postgres.DB,
	products ProductStore,
	predictions PredictionStore,
	cache *CacheService,
	gateway *inference.Gateway,
	lookup *rediscache.Cache,
	defaultLimit, maxLimit int,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		db:           db,
		products:     products,
		predictions:  predictions,
		cache:        cache,
		gateway:      gateway,
		lookup:       lookup,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// SearchResult holds matching products and the query parameters that named no
// known field and were therefore ignored.
type SearchResult struct {
	Products []*dto.ProductResponse
	Ignored  []string
}

func skuKey(sku string) string { return "sku:" + sku }

// GetBySKU returns a product and its latest prediction. The prediction is nil
// when the product has none.
func (s *CatalogService) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	// The generation is read before the database so that a purge landing
	// while this lookup runs retires the value written below.
	gen, genErr := s.lookup.Generation(ctx)
	if genErr != nil {
		s.logger.Warn("Lookup cache unavailable", zap.String("sku", sku), zap.Error(genErr))
	} else {
		var cached dto.ProductResponse
		if found, err := s.lookup.GetAt(ctx, gen, skuKey(sku), &cached); err != nil {
			s.logger.Warn("Lookup cache read failed", zap.String("sku", sku), zap.Error(err))
		} else if found {
			return &cached, nil
		}
	}

	product, err := s.products.GetBySKU(ctx, s.db, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, storageErr("get product", err)
	}

	pred, err := s.predictions.GetLatest(ctx, s.db, product.ID)
	if errors.Is(err, repository.ErrNotFound) {
		pred = nil
	} else if err != nil {
		return nil, storageErr("get latest prediction", err)
	}

	resp := toProductResponse(product, pred)
	if genErr == nil {
		if err := s.lookup.SetAt(ctx, gen, skuKey(sku), resp); err != nil {
			s.logger.Warn("Lookup cache write failed", zap.String("sku", sku), zap.Error(err))
		}
	}
	return resp, nil
}

// Search filters products by query parameters. limit and offset page the
// result; every other parameter is a field filter (see repository.BuildConditions).
func (s *CatalogService) Search(ctx context.Context, params map[string]string) (*SearchResult, error) {
	filters := make(map[string]string, len(params))
	for k, v := range params {
		if k != "limit" && k != "offset" {
			filters[k] = v
		}
	}

	limit, err := s.intParam(params, "limit", s.defaultLimit)
	if err != nil {
		return nil, err
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	offset, err := s.intParam(params, "offset", 0)
	if err != nil {
		return nil, err
	}

	conds, ignored, err := repository.BuildConditions(filters)
	if err != nil {
		return nil, err
	}
	if len(ignored) > 0 {
		s.logger.Debug("Ignoring unknown filters", zap.Strings("params", ignored))
	}

	rows, err := s.products.Search(ctx, s.db, repository.ProductFilter{
		Where:  conds,
		Limit:  uint64(limit),
		Offset: uint64(offset),
	})
	if err != nil {
		return nil, storageErr("search products", err)
	}

	result := &SearchResult{Products: make([]*dto.ProductResponse, 0, len(rows)), Ignored: ignored}
	for _, row := range rows {
		result.Products = append(result.Products, toProductResponse(row.Product, row.Prediction))
	}
	return result, nil
}

func (s *CatalogService) intParam(params map[string]string, name string, def int) (int, error) {
	raw, ok := params[name]
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &InputError{Msg: name + " must be a non-negative integer"}
	}
	return v, nil
}

// Refresh recomputes the prediction of one product and makes it the latest,
// committing both steps in one transaction.
func (s *CatalogService) Refresh(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	var resp *dto.ProductResponse
	err := postgres.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		product, err := s.products.GetBySKU(ctx, tx, sku)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return storageErr("get product", err)
		}

		res, err := s.gateway.Predict(product.Features)
		if err != nil {
			return err
		}
		pred, err := s.cache.Supersede(ctx, tx, product.ID, res, nil)
		if err != nil {
			return err
		}
		resp = toProductResponse(product, pred)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// cached lookups of this product may predate the commit
	if err := s.lookup.Purge(ctx); err != nil {
		s.logger.Warn("Failed to purge lookup cache", zap.String("sku", sku), zap.Error(err))
	}
	return resp, nil
}

// History lists the stored predictions of a product, newest first.
func (s *CatalogService) History(ctx context.Context, sku string, limit int) (*dto.PredictionHistoryResponse, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	product, err := s.products.GetBySKU(ctx, s.db, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, storageErr("get product", err)
	}

	preds, err := s.predictions.History(ctx, s.db, product.ID, uint64(limit))
	if err != nil {
		return nil, storageErr("list predictions", err)
	}

	resp := &dto.PredictionHistoryResponse{SKU: sku, Predictions: make([]dto.PredictionHistoryItem, 0, len(preds))}
	for _, p := range preds {
		item := dto.PredictionHistoryItem{
			PredictionResponse: *toPredictionResponse(p),
			CreatedAt:          dto.FormatTime(p.CreatedAt),
			IsLatest:           p.IsLatest,
		}
		if p.RunID != nil {
			item.RunID = p.RunID.String()
		}
		resp.Predictions = append(resp.Predictions, item)
	}
	return resp, nil
}

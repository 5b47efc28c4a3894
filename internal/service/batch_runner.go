package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shelfpulse/internal/dto"
	"shelfpulse/internal/inference"
	"shelfpulse/internal/models"
	"shelfpulse/pkg/metrics"
	"shelfpulse/pkg/postgres"
	"shelfpulse/pkg/rediscache"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BatchPolicy decides what a failing product does to the rest of a batch run.
type BatchPolicy string

const (
	// PolicyAllOrNothing rolls the whole run back on the first failure.
	PolicyAllOrNothing BatchPolicy = "all_or_nothing"
	// PolicyBestEffort skips failing products and commits the rest.
	PolicyBestEffort BatchPolicy = "best_effort"
)

// ParseBatchPolicy accepts the configuration spelling of a policy.
func ParseBatchPolicy(s string) (BatchPolicy, error) {
	switch p := BatchPolicy(s); p {
	case PolicyAllOrNothing, PolicyBestEffort:
		return p, nil
	case "":
		return PolicyAllOrNothing, nil
	default:
		return "", fmt.Errorf("unknown batch policy %q", s)
	}
}

type ItemFailure struct {
	ProductID int64
	SKU       string
	Err       error
}

// BatchResult is the tally of one run. Committed is false when the run was
// rolled back, in which case no prediction of this run was kept.
type BatchResult struct {
	RunID        uuid.UUID
	Policy       BatchPolicy
	Committed    bool
	Total        int
	SuccessCount int
	FailureCount int
	Failures     []ItemFailure
	Duration     time.Duration
}

// Summary converts the result for API responses.
func (r *BatchResult) Summary() *dto.BatchSummary {
	s := &dto.BatchSummary{
		RunID:        r.RunID.String(),
		Policy:       string(r.Policy),
		Committed:    r.Committed,
		Total:        r.Total,
		SuccessCount: r.SuccessCount,
		FailureCount: r.FailureCount,
		DurationMS:   r.Duration.Milliseconds(),
	}
	for _, f := range r.Failures {
		s.Failures = append(s.Failures, dto.ItemFailure{SKU: f.SKU, Error: PublicMessage(f.Err, "storage error")})
	}
	return s
}

// BatchRunner recomputes and caches the prediction of every product.
type BatchRunner struct {
	db       postgres.DB
	products ProductStore
	cache    *CacheService
	gateway  *inference.Gateway
	lookup   *rediscache.Cache
	policy   BatchPolicy
	logger   *zap.Logger

	running sync.Mutex
}

func NewBatchRunner(
	db postgres.DB,
	products ProductStore,
	cache *CacheService,
	gateway *inference.Gateway,
	lookup *rediscache.Cache,
	policy BatchPolicy,
	logger *zap.Logger,
) *BatchRunner {
	return &BatchRunner{
		db:       db,
		products: products,
		cache:    cache,
		gateway:  gateway,
		lookup:   lookup,
		policy:   policy,
		logger:   logger,
	}
}

func (r *BatchRunner) Policy() BatchPolicy { return r.policy }

// Run processes every product inside one transaction. It blocks until the
// whole catalog has been scanned. Only one run per process executes at a time.
func (r *BatchRunner) Run(ctx context.Context) (*BatchResult, error) {
	if !r.running.TryLock() {
		return nil, ErrBatchInProgress
	}
	defer r.running.Unlock()

	start := time.Now()
	result := &BatchResult{RunID: uuid.New(), Policy: r.policy}
	log := r.logger.With(zap.String("run_id", result.RunID.String()), zap.String("policy", string(r.policy)))
	log.Info("Batch run started")

	err := postgres.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		products, err := r.products.List(ctx, tx)
		if err != nil {
			return storageErr("list products", err)
		}
		result.Total = len(products)

		for _, p := range products {
			if err := ctx.Err(); err != nil {
				return err
			}

			var itemErr error
			if r.policy == PolicyBestEffort {
				itemErr = postgres.WithTx(ctx, tx, func(sp pgx.Tx) error {
					return r.process(ctx, sp, p, result.RunID)
				})
			} else {
				itemErr = r.process(ctx, tx, p, result.RunID)
			}

			if itemErr != nil {
				result.FailureCount++
				result.Failures = append(result.Failures, ItemFailure{ProductID: p.ID, SKU: p.SKU, Err: itemErr})
				metrics.BatchItems.WithLabelValues("failure").Inc()
				if r.policy == PolicyAllOrNothing {
					return fmt.Errorf("product %s: %w", p.SKU, itemErr)
				}
				log.Warn("Skipping product", zap.String("sku", p.SKU), zap.Error(itemErr))
				continue
			}
			result.SuccessCount++
			metrics.BatchItems.WithLabelValues("success").Inc()
		}
		return nil
	})
	result.Duration = time.Since(start)
	metrics.BatchDuration.Observe(result.Duration.Seconds())

	if err != nil {
		metrics.BatchRuns.WithLabelValues(string(r.policy), "rolled_back").Inc()
		log.Error("Batch run rolled back",
			zap.Error(err),
			zap.Int("total", result.Total),
			zap.Int("success_count", result.SuccessCount),
			zap.Int("failure_count", result.FailureCount),
		)
		return result, err
	}

	result.Committed = true
	metrics.BatchRuns.WithLabelValues(string(r.policy), "committed").Inc()
	if err := r.lookup.Purge(ctx); err != nil {
		log.Warn("Failed to purge lookup cache", zap.Error(err))
	}
	log.Info("Batch run committed",
		zap.Int("total", result.Total),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("failure_count", result.FailureCount),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (r *BatchRunner) process(ctx context.Context, q postgres.Querier, p *models.Product, runID uuid.UUID) error {
	res, err := r.gateway.Predict(p.Features)
	if err != nil {
		return err
	}
	_, err = r.cache.Supersede(ctx, q, p.ID, res, &runID)
	return err
}

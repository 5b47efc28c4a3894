package repository

import (
	"context"

	"shelfpulse/internal/models"
	"shelfpulse/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type PredictionRepository struct {
	logger *zap.Logger
}

func NewPredictionRepository(logger *zap.Logger) *PredictionRepository {
	return &PredictionRepository{logger: logger}
}

func predictionColumns(alias string) []string {
	cols := []string{
		"id", "product_id", "spoilage_risk", "days_to_expiry_pred", "forecasted_demand_pred",
		"dead_stock", "suggested_markdown_percent", "trigger_markdown", "sustainability_label",
		"run_id", "created_at", "is_latest",
	}
	if alias == "" {
		return cols
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return cols
}

func predictionDest(p *models.Prediction) []any {
	return []any{
		&p.ID, &p.ProductID, &p.SpoilageRisk, &p.DaysToExpiry, &p.ForecastedDemand,
		&p.DeadStock, &p.SuggestedMarkdownPercent, &p.TriggerMarkdown, &p.SustainabilityLabel,
		&p.RunID, &p.CreatedAt, &p.IsLatest,
	}
}

// DemoteLatest clears the latest flag of the product's current prediction and
// returns how many rows changed.
func (r *PredictionRepository) DemoteLatest(ctx context.Context, q postgres.Querier, productID int64) (int64, error) {
	sql, args, err := psql.Update("predictions").
		Set("is_latest", false).
		Where(squirrel.Eq{"product_id": productID, "is_latest": true}).
		ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Insert stores a prediction and fills in its id and creation time.
func (r *PredictionRepository) Insert(ctx context.Context, q postgres.Querier, p *models.Prediction) error {
	sql, args, err := psql.Insert("predictions").
		Columns("product_id", "spoilage_risk", "days_to_expiry_pred", "forecasted_demand_pred",
			"dead_stock", "suggested_markdown_percent", "trigger_markdown", "sustainability_label",
			"run_id", "is_latest").
		Values(p.ProductID, p.SpoilageRisk, p.DaysToExpiry, p.ForecastedDemand,
			p.DeadStock, p.SuggestedMarkdownPercent, p.TriggerMarkdown, p.SustainabilityLabel,
			p.RunID, p.IsLatest).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}

	return q.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.CreatedAt)
}

// GetLatest returns the latest prediction of a product or ErrNotFound.
func (r *PredictionRepository) GetLatest(ctx context.Context, q postgres.Querier, productID int64) (*models.Prediction, error) {
	sql, args, err := psql.Select(predictionColumns("")...).
		From("predictions").
		Where(squirrel.Eq{"product_id": productID, "is_latest": true}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var p models.Prediction
	if err := q.QueryRow(ctx, sql, args...).Scan(predictionDest(&p)...); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// CountLatest returns how many predictions of a product carry the latest flag.
func (r *PredictionRepository) CountLatest(ctx context.Context, q postgres.Querier, productID int64) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").
		From("predictions").
		Where(squirrel.Eq{"product_id": productID, "is_latest": true}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = q.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}

// History returns the most recent predictions of a product, newest first.
func (r *PredictionRepository) History(ctx context.Context, q postgres.Querier, productID int64, limit uint64) ([]*models.Prediction, error) {
	sql, args, err := psql.Select(predictionColumns("")...).
		From("predictions").
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(predictionDest(&p)...); err != nil {
			return nil, err
		}
		history = append(history, &p)
	}
	return history, rows.Err()
}

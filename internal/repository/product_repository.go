package repository

import (
	"context"
	"fmt"
	"strings"

	"shelfpulse/internal/features"
	"shelfpulse/internal/models"
	"shelfpulse/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

type ProductRepository struct {
	logger *zap.Logger
}

func NewProductRepository(logger *zap.Logger) *ProductRepository {
	return &ProductRepository{logger: logger}
}

func productColumns(alias string) []string {
	cols := append([]string{"id", "sku", "category"}, features.Columns()...)
	if alias == "" {
		return cols
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return cols
}

// productScanner collects scan destinations for one product row.
type productScanner struct {
	product models.Product
	values  []*float64
}

func newProductScanner() *productScanner {
	return &productScanner{values: make([]*float64, len(features.Catalog))}
}

func (s *productScanner) dest() []any {
	dest := []any{&s.product.ID, &s.product.SKU, &s.product.Category}
	for i := range s.values {
		dest = append(dest, &s.values[i])
	}
	return dest
}

func (s *productScanner) result() *models.Product {
	p := s.product
	p.Features = make(features.Record, len(features.Catalog))
	for i, f := range features.Catalog {
		if s.values[i] != nil {
			p.Features[f.Name] = *s.values[i]
		}
	}
	return &p
}

// List returns every product ordered by id.
func (r *ProductRepository) List(ctx context.Context, q postgres.Querier) ([]*models.Product, error) {
	sql, args, err := psql.Select(productColumns("")...).
		From("products").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		s := newProductScanner()
		if err := rows.Scan(s.dest()...); err != nil {
			return nil, err
		}
		products = append(products, s.result())
	}
	return products, rows.Err()
}

func (r *ProductRepository) GetBySKU(ctx context.Context, q postgres.Querier, sku string) (*models.Product, error) {
	sql, args, err := psql.Select(productColumns("")...).
		From("products").
		Where(squirrel.Eq{"sku": sku}).
		ToSql()
	if err != nil {
		return nil, err
	}

	s := newProductScanner()
	if err := q.QueryRow(ctx, sql, args...).Scan(s.dest()...); err != nil {
		return nil, notFound(err)
	}
	return s.result(), nil
}

func (r *ProductRepository) Count(ctx context.Context, q postgres.Querier) (int, error) {
	sql, args, err := psql.Select("COUNT(*)").From("products").ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = q.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}

// Upsert inserts a product or replaces the category and features of the
// product with the same SKU. Absent features are stored as NULL.
func (r *ProductRepository) Upsert(ctx context.Context, q postgres.Querier, p *models.Product) (int64, error) {
	cols := productColumns("")[1:]
	values := []any{p.SKU, p.Category}
	for _, f := range features.Catalog {
		if v, ok := p.Features[f.Name]; ok {
			values = append(values, v)
		} else {
			values = append(values, nil)
		}
	}

	updates := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	sql, args, err := psql.Insert("products").
		Columns(cols...).
		Values(values...).
		Suffix("ON CONFLICT (sku) DO UPDATE SET " + strings.Join(updates, ", ") + " RETURNING id").
		ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

// Search returns products joined with their latest prediction. Products without
// a latest prediction are not part of the result.
func (r *ProductRepository) Search(ctx context.Context, q postgres.Querier, filter ProductFilter) ([]*models.ProductPrediction, error) {
	cols := append(productColumns("p"), predictionColumns("pr")...)
	builder := psql.Select(cols...).
		From("products p").
		Join("predictions pr ON pr.product_id = p.id AND pr.is_latest").
		OrderBy("p.id").
		Limit(filter.Limit).
		Offset(filter.Offset)
	for _, cond := range filter.Where {
		builder = builder.Where(cond)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Searching products", zap.String("sql", sql), zap.Int("conditions", len(filter.Where)))

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*models.ProductPrediction
	for rows.Next() {
		ps := newProductScanner()
		var pred models.Prediction
		if err := rows.Scan(append(ps.dest(), predictionDest(&pred)...)...); err != nil {
			return nil, err
		}
		results = append(results, &models.ProductPrediction{Product: ps.result(), Prediction: &pred})
	}
	return results, rows.Err()
}

package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"shelfpulse/internal/features"
	"shelfpulse/internal/models"
	"shelfpulse/pkg/postgres"
	"shelfpulse/pkg/rediscache"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// IngestService loads the product catalog from CSV tables.
type IngestService struct {
	db       postgres.DB
	products ProductWriter
	lookup   *rediscache.Cache
	logger   *zap.Logger
}

func NewIngestService(db postgres.DB, products ProductWriter, lookup *rediscache.Cache, logger *zap.Logger) *IngestService {
	return &IngestService{
		db:       db,
		products: products,
		lookup:   lookup,
		logger:   logger,
	}
}

// IngestCSV upserts one product per row. The table needs a sku column; a
// category column and any catalog feature columns are optional. All rows are
// written in one transaction, so a bad row leaves the catalog untouched.
func (s *IngestService) IngestCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, ErrEmptyUpload
	}
	if err != nil {
		return 0, &InputError{Msg: "failed to read CSV header", Err: err}
	}

	skuCol, categoryCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "sku":
			skuCol = i
		case "category":
			categoryCol = i
		}
	}
	if skuCol < 0 {
		return 0, &InputError{Msg: "CSV has no sku column"}
	}

	count := 0
	err = postgres.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		for line := 1; ; line++ {
			row, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return &InputError{Msg: fmt.Sprintf("row %d", line), Err: err}
			}

			sku := cleanText(row[skuCol])
			if sku == "" {
				return &InputError{Msg: fmt.Sprintf("row %d: empty sku", line)}
			}
			rec, err := features.RecordFromStrings(header, row)
			if err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
			p := &models.Product{SKU: sku, Features: rec}
			if categoryCol >= 0 {
				if c := cleanText(row[categoryCol]); c != "" {
					p.Category = &c
				}
			}

			if _, err := s.products.Upsert(ctx, tx, p); err != nil {
				return storageErr("upsert product "+sku, err)
			}
			count++
		}
	})
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrEmptyUpload
	}

	if err := s.lookup.Purge(ctx); err != nil {
		s.logger.Warn("Failed to purge lookup cache", zap.Error(err))
	}

	s.logger.Info("Products ingested", zap.Int("count", count))
	return count, nil
}

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"shelfpulse/internal/features"
	"shelfpulse/internal/inference"
	"shelfpulse/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVPredictionColumns are appended to every row of a CSV batch prediction.
var CSVPredictionColumns = []string{
	"spoilage_risk",
	"days_to_expiry",
	"forecasted_demand",
	"dead_stock",
	"trigger_markdown",
	"sustainability_label",
}

// PredictionService runs the models on request without touching storage.
type PredictionService struct {
	gateway *inference.Gateway
	logger  *zap.Logger
}

func NewPredictionService(gateway *inference.Gateway, logger *zap.Logger) *PredictionService {
	return &PredictionService{
		gateway: gateway,
		logger:  logger,
	}
}

// Predict runs all models over a decoded JSON feature mapping.
func (s *PredictionService) Predict(ctx context.Context, data map[string]any) (*inference.Result, error) {
	if len(data) == 0 {
		return nil, &InputError{Msg: "No JSON received"}
	}
	rec, err := features.RecordFromJSON(data)
	if err != nil {
		countPredictionError(err)
		return nil, err
	}
	res, err := s.gateway.Predict(rec)
	if err != nil {
		countPredictionError(err)
		return nil, err
	}
	metrics.PredictionsServed.WithLabelValues("predict").Inc()
	return res, nil
}

// PredictCSV reads a CSV table, predicts every row and returns the table with
// the prediction columns appended. Rows keep their input order.
func (s *PredictionService) PredictCSV(ctx context.Context, r io.Reader) ([]byte, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyUpload
	}
	if err != nil {
		return nil, &InputError{Msg: "failed to read CSV header", Err: err}
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &InputError{Msg: "failed to read CSV", Err: err}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyUpload
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append(append([]string{}, header...), CSVPredictionColumns...)); err != nil {
		return nil, err
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := features.RecordFromStrings(header, row)
		if err != nil {
			countPredictionError(err)
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		res, err := s.gateway.Predict(rec)
		if err != nil {
			countPredictionError(err)
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out := append(append([]string{}, row...),
			res.SpoilageRisk,
			strconv.Itoa(res.DaysToExpiry),
			strconv.FormatFloat(res.ForecastedDemand, 'f', -1, 64),
			strconv.FormatBool(res.DeadStock),
			strconv.FormatBool(res.TriggerMarkdown),
			res.SustainabilityLabel,
		)
		if err := w.Write(out); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	metrics.PredictionsServed.WithLabelValues("predict_csv").Add(float64(len(rows)))
	s.logger.Info("CSV batch predicted", zap.Int("rows", len(rows)), zap.Int("columns", len(header)))
	return buf.Bytes(), nil
}

func countPredictionError(err error) {
	var inf *inference.InferenceError
	kind := "input"
	if errors.As(err, &inf) {
		kind = "inference"
	}
	metrics.PredictionErrors.WithLabelValues(kind).Inc()
}

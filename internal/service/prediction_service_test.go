package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"
	"testing"

	"shelfpulse/internal/features"
	"shelfpulse/internal/inference/inferencetest"

	"go.uber.org/zap"
)

func newPredictionService(t *testing.T) *PredictionService {
	t.Helper()
	return NewPredictionService(inferencetest.Gateway(t), zap.NewNop())
}

func recordJSON() map[string]any {
	data := map[string]any{}
	for k, v := range inferencetest.Record() {
		data[k] = v
	}
	return data
}

// recordCSV renders n copies of the fixture record with a leading name column.
// The spoilage score of row i is overridden by scores[i] when given.
func recordCSV(t *testing.T, scores ...float64) string {
	t.Helper()
	rec := inferencetest.Record()
	header := []string{"Product_Name"}
	for _, f := range features.Catalog {
		header = append(header, f.Name)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for i, score := range scores {
		row := []string{"item-" + strconv.Itoa(i)}
		for _, f := range features.Catalog {
			v := rec[f.Name]
			if f.Name == "Spoilage_Risk_Score" {
				v = score
			}
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		_ = w.Write(row)
	}
	w.Flush()
	return buf.String()
}

func TestPredict(t *testing.T) {
	svc := newPredictionService(t)
	res, err := svc.Predict(context.Background(), recordJSON())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.SpoilageRisk != "High" || res.DaysToExpiry != 8 || res.SustainabilityLabel != "Eco-Friendly" {
		t.Errorf("result = %+v", res)
	}
}

func TestPredictInputErrors(t *testing.T) {
	svc := newPredictionService(t)

	withoutDemand := recordJSON()
	delete(withoutDemand, "Promo_Effectiveness")

	badValue := recordJSON()
	badValue["Overstock_Risk"] = "lots"

	tests := []struct {
		name    string
		data    map[string]any
		wantMsg string
	}{
		{"empty", map[string]any{}, "No JSON received"},
		{"missing", withoutDemand, "missing feature: Promo_Effectiveness"},
		{"invalid", badValue, `invalid value "lots" for feature Overstock_Risk`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Predict(context.Background(), tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsClientError(err) {
				t.Errorf("%v is not a client error", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestPredictCSV(t *testing.T) {
	svc := newPredictionService(t)
	scores := []float64{0.9, 0.1, 0.2, 0.9}
	out, err := svc.PredictCSV(context.Background(), strings.NewReader(recordCSV(t, scores...)))
	if err != nil {
		t.Fatalf("predict csv: %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	if len(rows) != len(scores)+1 {
		t.Fatalf("rows = %d, want %d", len(rows), len(scores)+1)
	}

	inCols := len(features.Catalog) + 1
	header := rows[0]
	if len(header) != inCols+len(CSVPredictionColumns) {
		t.Fatalf("columns = %d, want %d", len(header), inCols+len(CSVPredictionColumns))
	}
	for i, name := range CSVPredictionColumns {
		if header[inCols+i] != name {
			t.Errorf("header[%d] = %q, want %q", inCols+i, header[inCols+i], name)
		}
	}

	wantRisk := []string{"High", "Low", "Low", "High"}
	for i, row := range rows[1:] {
		if row[0] != "item-"+strconv.Itoa(i) {
			t.Errorf("row %d name = %q, order not preserved", i, row[0])
		}
		if row[inCols] != wantRisk[i] {
			t.Errorf("row %d spoilage = %q, want %q", i, row[inCols], wantRisk[i])
		}
	}
}

func TestPredictCSVStripsBOM(t *testing.T) {
	svc := newPredictionService(t)
	out, err := svc.PredictCSV(context.Background(), strings.NewReader("\ufeff"+recordCSV(t, 0.9)))
	if err != nil {
		t.Fatalf("predict csv: %v", err)
	}
	if !strings.HasPrefix(string(out), "Product_Name,") {
		t.Errorf("output starts with %q", string(out[:20]))
	}
}

func TestPredictCSVErrors(t *testing.T) {
	svc := newPredictionService(t)

	missing := strings.Replace(recordCSV(t, 0.9, 0.9), "Waste_Risk_Index", "Waste", 1)

	tests := []struct {
		name    string
		input   string
		wantIs  error
		wantMsg string
	}{
		{"zero bytes", "", ErrEmptyUpload, "CSV is empty"},
		{"header only", "Product_Name,Spoilage_Risk_Score\n", ErrEmptyUpload, "CSV is empty"},
		{"missing column", missing, nil, "row 1: missing feature: Waste_Risk_Index"},
		{"ragged", "a,b\n1,2,3\n", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PredictCSV(context.Background(), strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsClientError(err) {
				t.Errorf("%v is not a client error", err)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

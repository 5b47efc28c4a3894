package inference_test

import (
	"errors"
	"slices"
	"testing"

	"shelfpulse/internal/features"
	"shelfpulse/internal/inference"
	"shelfpulse/internal/inference/inferencetest"
)

func TestGatewayPredict(t *testing.T) {
	gw := inferencetest.Gateway(t)

	got, err := gw.Predict(inferencetest.Record())
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := inference.Result{
		SpoilageRisk:             "High",
		DaysToExpiry:             8,
		ForecastedDemand:         140,
		DeadStock:                false,
		TriggerMarkdown:          true,
		SuggestedMarkdownPercent: 12,
		SustainabilityLabel:      "Eco-Friendly",
	}
	if *got != want {
		t.Errorf("Predict = %+v, want %+v", *got, want)
	}
}

func TestGatewayPredictIsDeterministic(t *testing.T) {
	gw := inferencetest.Gateway(t)
	rec := inferencetest.Record()

	first, err := gw.Predict(rec)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := gw.Predict(rec)
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if *again != *first {
			t.Fatalf("run %d: %+v != %+v", i, *again, *first)
		}
	}
}

func TestGatewayLabelsComeFromEncoder(t *testing.T) {
	gw := inferencetest.Gateway(t)
	for _, score := range []float64{0, 0.1, 0.3, 0.5, 0.9, 1} {
		rec := inferencetest.Record()
		rec["Spoilage_Risk_Score"] = score
		label, err := gw.Spoilage(rec)
		if err != nil {
			t.Fatalf("Spoilage(%v): %v", score, err)
		}
		if !slices.Contains(inferencetest.SpoilageLabels, label) {
			t.Errorf("Spoilage(%v) = %q, not an encoder label", score, label)
		}
	}
}

func TestMarkdownTriggerMatchesPercent(t *testing.T) {
	gw := inferencetest.Gateway(t)
	tests := []struct {
		name      string
		spoilage  float64
		overstock float64
		want      bool
	}{
		{"positive", 0.9, 0.4, true},
		{"zero", 0.5, 0, false},
		{"negative", 0.1, 0, false},
		{"tiny positive", 0.5, 0.001, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := inferencetest.Record()
			rec["Spoilage_Risk_Score"] = tt.spoilage
			rec["Overstock_Risk"] = tt.overstock
			percent, trigger, err := gw.Markdown(rec)
			if err != nil {
				t.Fatalf("Markdown: %v", err)
			}
			if trigger != tt.want {
				t.Errorf("trigger = %v for percent %v, want %v", trigger, percent, tt.want)
			}
			if trigger != (percent > 0) {
				t.Errorf("trigger %v inconsistent with percent %v", trigger, percent)
			}
		})
	}
}

func TestExpiryIsNotClamped(t *testing.T) {
	gw := inferencetest.Gateway(t)
	rec := inferencetest.Record()
	rec["Spoilage_Risk_Score"] = 2

	days, err := gw.DaysToExpiry(rec)
	if err != nil {
		t.Fatalf("DaysToExpiry: %v", err)
	}
	if days != -20 {
		t.Errorf("DaysToExpiry = %d, want -20", days)
	}
}

func TestExpiryOutOfRange(t *testing.T) {
	gw := inferencetest.Gateway(t)
	tests := []struct {
		name  string
		score float64
	}{
		{"huge positive", -1e18},
		{"huge negative", 1e18},
		{"past int32", -1e9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := inferencetest.Record()
			rec["Spoilage_Risk_Score"] = tt.score

			days, err := gw.DaysToExpiry(rec)
			var inf *inference.InferenceError
			if !errors.As(err, &inf) || inf.Model != features.ModelExpiry {
				t.Fatalf("DaysToExpiry = %d, %v; want expiry InferenceError", days, err)
			}
			if _, err := gw.Predict(rec); !errors.As(err, &inf) {
				t.Errorf("Predict err = %v, want InferenceError", err)
			}
		})
	}
}

func TestDeadStockThreshold(t *testing.T) {
	gw := inferencetest.Gateway(t)
	rec := inferencetest.Record()
	rec["Days_Since_Last_Sale"] = 90

	dead, err := gw.DeadStock(rec)
	if err != nil {
		t.Fatalf("DeadStock: %v", err)
	}
	if !dead {
		t.Error("expected dead stock after 90 days without a sale")
	}
}

func TestGatewayMissingFeature(t *testing.T) {
	gw := inferencetest.Gateway(t)
	rec := inferencetest.Record()
	delete(rec, "Footprint_Factor")

	_, err := gw.Predict(rec)
	var missing *features.MissingFeatureError
	if !errors.As(err, &missing) || missing.Field != "Footprint_Factor" {
		t.Fatalf("expected missing Footprint_Factor, got %v", err)
	}
}

func TestGatewayInferenceError(t *testing.T) {
	m := inferencetest.Models()
	m.SpoilageEncoder = &inference.LabelEncoder{Classes: []string{"High", "Low", "Medium"}}
	gw, err := inference.NewGateway(m)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	// swap in a narrower encoder after validation to simulate a bad artifact
	m.SpoilageEncoder.Classes = m.SpoilageEncoder.Classes[:1]

	rec := inferencetest.Record()
	rec["Spoilage_Risk_Score"] = 0.1 // decodes to class 1

	_, err = gw.Spoilage(rec)
	var inf *inference.InferenceError
	if !errors.As(err, &inf) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
	if inf.Model != features.ModelSpoilage {
		t.Errorf("Model = %s", inf.Model)
	}
}

func TestNewGatewayRejectsMismatchedWidth(t *testing.T) {
	m := inferencetest.Models()
	m.Demand = &inference.LinearRegressor{Coef: make([]float64, 5)}

	if _, err := inference.NewGateway(m); err == nil {
		t.Fatal("expected width mismatch to fail at startup")
	}
}

func TestNewGatewayRejectsEncoderMismatch(t *testing.T) {
	m := inferencetest.Models()
	m.SustainabilityEncoder = &inference.LabelEncoder{Classes: []string{"A", "B"}}

	if _, err := inference.NewGateway(m); err == nil {
		t.Fatal("expected encoder size mismatch to fail at startup")
	}
}

func TestNewGatewayRejectsMissingModel(t *testing.T) {
	m := inferencetest.Models()
	m.Markdown = nil

	if _, err := inference.NewGateway(m); err == nil {
		t.Fatal("expected missing model to fail")
	}
}

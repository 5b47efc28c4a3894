package inference

import (
	"errors"
	"fmt"
	"math"

	"shelfpulse/internal/features"
)

// InferenceError wraps a failure inside a model call. The cause is structural
// (shape mismatch, unknown class) so callers should not retry.
type InferenceError struct {
	Model features.ModelName
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s model: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Models holds the loaded capabilities of all six models.
type Models struct {
	Version               string
	Spoilage              Classifier
	SpoilageEncoder       *LabelEncoder
	Expiry                Regressor
	Demand                Regressor
	DeadStock             Classifier
	Markdown              Regressor
	Sustainability        Classifier
	SustainabilityEncoder *LabelEncoder
}

// Result is the combined output of all models for one product.
type Result struct {
	SpoilageRisk             string  `json:"spoilage_risk"`
	DaysToExpiry             int     `json:"days_to_expiry"`
	ForecastedDemand         float64 `json:"forecasted_demand"`
	DeadStock                bool    `json:"dead_stock"`
	TriggerMarkdown          bool    `json:"trigger_markdown"`
	SuggestedMarkdownPercent float64 `json:"suggested_markdown_percent"`
	SustainabilityLabel      string  `json:"sustainability_label"`
}

// Gateway runs every model over a feature record. It is built once at startup
// and is safe for concurrent use since it never mutates the loaded models.
type Gateway struct {
	models Models
}

// NewGateway checks every model against its feature schema and fails when an
// input width or encoder size does not match.
func NewGateway(m *Models) (*Gateway, error) {
	if m == nil {
		return nil, errors.New("inference: no models")
	}
	type widthed interface{ NumFeatures() int }
	checks := []struct {
		name  features.ModelName
		model widthed
	}{
		{features.ModelSpoilage, m.Spoilage},
		{features.ModelExpiry, m.Expiry},
		{features.ModelDemand, m.Demand},
		{features.ModelDeadStock, m.DeadStock},
		{features.ModelMarkdown, m.Markdown},
		{features.ModelSustainability, m.Sustainability},
	}
	var errs []error
	for _, c := range checks {
		if isNil(c.model) {
			errs = append(errs, fmt.Errorf("%s: model not loaded", c.name))
			continue
		}
		schema, _ := features.SchemaFor(c.name)
		if got := c.model.NumFeatures(); got != schema.Width() {
			errs = append(errs, fmt.Errorf("%s: model expects %d features, schema has %d", c.name, got, schema.Width()))
		}
	}
	errs = append(errs,
		checkEncoder(features.ModelSpoilage, m.Spoilage, m.SpoilageEncoder),
		checkEncoder(features.ModelSustainability, m.Sustainability, m.SustainabilityEncoder),
	)
	if !isNil(m.DeadStock) {
		if cc, ok := m.DeadStock.(ClassCounter); ok && cc.NumClasses() != 2 {
			errs = append(errs, fmt.Errorf("%s: binary classifier emits %d classes", features.ModelDeadStock, cc.NumClasses()))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Gateway{models: *m}, nil
}

func checkEncoder(name features.ModelName, c Classifier, enc *LabelEncoder) error {
	if enc == nil {
		return fmt.Errorf("%s: label encoder not loaded", name)
	}
	if isNil(c) {
		return nil
	}
	if cc, ok := c.(ClassCounter); ok && cc.NumClasses() > 0 && cc.NumClasses() != len(enc.Classes) {
		return fmt.Errorf("%s: classifier emits %d classes, encoder knows %d", name, cc.NumClasses(), len(enc.Classes))
	}
	return nil
}

func isNil(v any) bool {
	return v == nil
}

// Version returns the manifest version of the loaded models.
func (g *Gateway) Version() string { return g.models.Version }

// Predict runs all six models over a record.
func (g *Gateway) Predict(rec features.Record) (*Result, error) {
	spoilage, err := g.Spoilage(rec)
	if err != nil {
		return nil, err
	}
	expiry, err := g.DaysToExpiry(rec)
	if err != nil {
		return nil, err
	}
	demand, err := g.ForecastDemand(rec)
	if err != nil {
		return nil, err
	}
	dead, err := g.DeadStock(rec)
	if err != nil {
		return nil, err
	}
	percent, trigger, err := g.Markdown(rec)
	if err != nil {
		return nil, err
	}
	sustain, err := g.Sustainability(rec)
	if err != nil {
		return nil, err
	}
	return &Result{
		SpoilageRisk:             spoilage,
		DaysToExpiry:             expiry,
		ForecastedDemand:         demand,
		DeadStock:                dead,
		TriggerMarkdown:          trigger,
		SuggestedMarkdownPercent: percent,
		SustainabilityLabel:      sustain,
	}, nil
}

// Spoilage returns the decoded spoilage risk label.
func (g *Gateway) Spoilage(rec features.Record) (string, error) {
	return g.decodeClass(features.ModelSpoilage, g.models.Spoilage, g.models.SpoilageEncoder, rec)
}

// Sustainability returns the decoded sustainability label.
func (g *Gateway) Sustainability(rec features.Record) (string, error) {
	return g.decodeClass(features.ModelSustainability, g.models.Sustainability, g.models.SustainabilityEncoder, rec)
}

// DaysToExpiry rounds the expiry regression to whole days. Negative values
// are passed through; values outside the int32 range of the stored column
// are rejected.
func (g *Gateway) DaysToExpiry(rec features.Record) (int, error) {
	v, err := g.regress(features.ModelExpiry, g.models.Expiry, rec)
	if err != nil {
		return 0, err
	}
	days := math.RoundToEven(v)
	if days > math.MaxInt32 || days < math.MinInt32 {
		return 0, &InferenceError{Model: features.ModelExpiry, Err: fmt.Errorf("days to expiry %g out of range", v)}
	}
	return int(days), nil
}

// ForecastDemand rounds the demand regression to 3 decimals.
func (g *Gateway) ForecastDemand(rec features.Record) (float64, error) {
	v, err := g.regress(features.ModelDemand, g.models.Demand, rec)
	if err != nil {
		return 0, err
	}
	return roundTo(v, 3), nil
}

// DeadStock reports whether the binary classifier flags the product.
func (g *Gateway) DeadStock(rec features.Record) (bool, error) {
	vec, err := features.BuildFor(features.ModelDeadStock, rec)
	if err != nil {
		return false, err
	}
	class, err := g.models.DeadStock.PredictClass(vec)
	if err != nil {
		return false, &InferenceError{Model: features.ModelDeadStock, Err: err}
	}
	return class != 0, nil
}

// Markdown returns the suggested markdown percentage rounded to 2 decimals and
// the trigger flag, which fires for any positive percentage.
func (g *Gateway) Markdown(rec features.Record) (float64, bool, error) {
	v, err := g.regress(features.ModelMarkdown, g.models.Markdown, rec)
	if err != nil {
		return 0, false, err
	}
	percent := roundTo(v, 2)
	return percent, MarkdownTriggered(percent), nil
}

// MarkdownTriggered is the derived trigger rule.
func MarkdownTriggered(percent float64) bool {
	return percent > 0
}

func (g *Gateway) regress(name features.ModelName, m Regressor, rec features.Record) (float64, error) {
	vec, err := features.BuildFor(name, rec)
	if err != nil {
		return 0, err
	}
	v, err := m.Predict(vec)
	if err != nil {
		return 0, &InferenceError{Model: name, Err: err}
	}
	return v, nil
}

func (g *Gateway) decodeClass(name features.ModelName, m Classifier, enc *LabelEncoder, rec features.Record) (string, error) {
	vec, err := features.BuildFor(name, rec)
	if err != nil {
		return "", err
	}
	class, err := m.PredictClass(vec)
	if err != nil {
		return "", &InferenceError{Model: name, Err: err}
	}
	label, err := enc.Decode(class)
	if err != nil {
		return "", &InferenceError{Model: name, Err: err}
	}
	return label, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Record holds named feature values of one product. Booleans are stored as 0/1.
// An absent key means the value is unknown.
type Record map[string]float64

// MissingFeatureError reports a feature a model needs but the record lacks.
type MissingFeatureError struct {
	Field string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature: %s", e.Field)
}

// InvalidFeatureError reports a value that cannot be read as a number.
type InvalidFeatureError struct {
	Field string
	Value string
}

func (e *InvalidFeatureError) Error() string {
	return fmt.Sprintf("invalid value %q for feature %s", e.Value, e.Field)
}

// RecordFromJSON converts a decoded JSON object. Keys that are not catalog
// features are ignored, null values are treated as absent.
func RecordFromJSON(data map[string]any) (Record, error) {
	rec := make(Record, len(data))
	for key, raw := range data {
		if _, ok := Lookup(key); !ok {
			continue
		}
		switch v := raw.(type) {
		case nil:
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &InvalidFeatureError{Field: key, Value: fmt.Sprint(v)}
			}
			rec[key] = v
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, &InvalidFeatureError{Field: key, Value: v.String()}
			}
			rec[key] = f
		case bool:
			rec[key] = boolValue(v)
		case string:
			f, ok, err := parseCell(v)
			if err != nil {
				return nil, &InvalidFeatureError{Field: key, Value: v}
			}
			if ok {
				rec[key] = f
			}
		default:
			return nil, &InvalidFeatureError{Field: key, Value: fmt.Sprint(v)}
		}
	}
	return rec, nil
}

// RecordFromStrings builds a record from one CSV row. Columns that are not
// catalog features are ignored and empty cells are treated as absent.
func RecordFromStrings(header, row []string) (Record, error) {
	rec := make(Record, len(header))
	for i, name := range header {
		if i >= len(row) {
			break
		}
		name = strings.TrimSpace(name)
		if _, ok := Lookup(name); !ok {
			continue
		}
		f, ok, err := parseCell(row[i])
		if err != nil {
			return nil, &InvalidFeatureError{Field: name, Value: row[i]}
		}
		if ok {
			rec[name] = f
		}
	}
	return rec, nil
}

func parseCell(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	switch strings.ToLower(s) {
	case "true":
		return 1, true, nil
	case "false":
		return 0, true, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a number: %q", s)
	}
	return f, true, nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Build assembles the input vector for a schema. The first field absent from
// the record, in schema order, is reported as a MissingFeatureError.
func Build(schema Schema, rec Record) ([]float64, error) {
	vec := make([]float64, len(schema.Fields))
	for i, f := range schema.Fields {
		v, ok := rec[f.Name]
		if !ok {
			return nil, &MissingFeatureError{Field: f.Name}
		}
		vec[i] = v
	}
	return vec, nil
}

// BuildFor is Build with the schema looked up by model name.
func BuildFor(model ModelName, rec Record) ([]float64, error) {
	schema, ok := SchemaFor(model)
	if !ok {
		return nil, fmt.Errorf("features: unknown model %q", model)
	}
	return Build(schema, rec)
}

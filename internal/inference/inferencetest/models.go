// Package inferencetest provides small deterministic models for tests.
package inferencetest

import (
	"testing"

	"shelfpulse/internal/features"
	"shelfpulse/internal/inference"
)

// Labels of the fixture encoders, in encoder order.
var (
	SpoilageLabels       = []string{"High", "Low", "Medium"}
	SustainabilityLabels = []string{"Eco-Friendly", "High-Impact", "Moderate"}
)

func weights(model features.ModelName, w map[string]float64) []float64 {
	schema, _ := features.SchemaFor(model)
	coef := make([]float64, schema.Width())
	for i, f := range schema.Fields {
		coef[i] = w[f.Name]
	}
	return coef
}

// Models builds the fixture model set.
//
//   - spoilage: High when Spoilage_Risk_Score is large, Low when small
//   - expiry: 30 - 25*Spoilage_Risk_Score
//   - demand: 100 + 50*Historical_Sell_Through + 0.0004*Promo_Effectiveness
//   - dead stock: logistic on Days_Since_Last_Sale, flips at 60 days
//   - markdown: 20*Spoilage_Risk_Score + 10*Overstock_Risk - 10
//   - sustainability: tree ensemble on carbon footprint and recyclability
func Models() *inference.Models {
	spoilage, err := inference.NewSoftmaxClassifier(
		[]float64{0, 5, 2.5},
		[][]float64{
			weights(features.ModelSpoilage, map[string]float64{"Spoilage_Risk_Score": 10}),
			weights(features.ModelSpoilage, map[string]float64{"Spoilage_Risk_Score": -10}),
			weights(features.ModelSpoilage, nil),
		},
	)
	if err != nil {
		panic(err)
	}

	split := func(feature int, threshold float64, left, right int) inference.TreeNode {
		return inference.TreeNode{Feature: feature, Threshold: threshold, Left: left, Right: right}
	}
	leaf := func(v float64) inference.TreeNode {
		return inference.TreeNode{Left: -1, Right: -1, Value: v}
	}
	tree := inference.Tree{Nodes: []inference.TreeNode{
		split(0, 2, 1, 2), // Embedded_Carbon_Footprint
		leaf(0),
		split(4, 0.5, 3, 4), // Recyclability_Score
		leaf(1),
		leaf(2),
	}}

	return &inference.Models{
		Version:         "fixture",
		Spoilage:        spoilage,
		SpoilageEncoder: &inference.LabelEncoder{Classes: SpoilageLabels},
		Expiry: &inference.LinearRegressor{
			Intercept: 30,
			Coef:      weights(features.ModelExpiry, map[string]float64{"Spoilage_Risk_Score": -25}),
		},
		Demand: &inference.LinearRegressor{
			Intercept: 100,
			Coef: weights(features.ModelDemand, map[string]float64{
				"Historical_Sell_Through": 50,
				"Promo_Effectiveness":     0.0004,
			}),
		},
		DeadStock: &inference.LogisticClassifier{
			Intercept: -6,
			Coef:      weights(features.ModelDeadStock, map[string]float64{"Days_Since_Last_Sale": 0.1}),
		},
		Markdown: &inference.LinearRegressor{
			Intercept: -10,
			Coef: weights(features.ModelMarkdown, map[string]float64{
				"Spoilage_Risk_Score": 20,
				"Overstock_Risk":      10,
			}),
		},
		Sustainability: &inference.TreeEnsemble{
			Features: 8,
			Classes:  3,
			Trees:    []inference.Tree{tree, tree, tree},
		},
		SustainabilityEncoder: &inference.LabelEncoder{Classes: SustainabilityLabels},
	}
}

// Gateway returns a gateway over the fixture models.
func Gateway(t testing.TB) *inference.Gateway {
	t.Helper()
	gw, err := inference.NewGateway(Models())
	if err != nil {
		t.Fatalf("fixture gateway: %v", err)
	}
	return gw
}

// Record returns a complete feature record resembling a fresh produce item.
func Record() features.Record {
	return features.Record{
		"Historical_Sell_Through":   0.8,
		"Spoilage_Risk_Score":       0.9,
		"Cold_Chain_Energy_Use":     2.5,
		"Sensor_Anomalies":          1,
		"Markdown_History":          2,
		"Transport_Emissions":       3.1,
		"Recyclability_Score":       0.7,
		"Overstock_Risk":            0.4,
		"Stockout_Risk":             0.2,
		"Embedded_Carbon_Footprint": 1.5,
		"Recycled_Content_Pct":      35,
		"Compostability_Score":      0.6,
		"Take_Back_Eligible":        1,
		"Footprint_Factor":          1.1,
		"Holiday_Demand_Amplifier":  1.2,
		"Upcoming_Local_Events":     0,
		"Promo_Effectiveness":       0.5,
		"Festival_Sales_Boost":      0.3,
		"Days_Since_Last_Sale":      12,
		"Average_Turnover_Time":     4.5,
		"Redundancy_Index":          0.1,
		"Shelf_Space_Efficiency":    0.8,
		"Waste_Risk_Index":          0.35,
		"Days_to_Expiry":            3,
		"Forecasted_Demand":         140,
		"Dead_Inventory_Flag":       0,
	}
}

package features

import "fmt"

// ModelName identifies one of the served models.
type ModelName string

const (
	ModelSpoilage       ModelName = "spoilage"
	ModelExpiry         ModelName = "expiry"
	ModelDemand         ModelName = "demand"
	ModelDeadStock      ModelName = "dead_stock"
	ModelMarkdown       ModelName = "markdown"
	ModelSustainability ModelName = "sustainability"
)

// AllModels lists the served models in prediction order.
var AllModels = []ModelName{
	ModelSpoilage,
	ModelExpiry,
	ModelDemand,
	ModelDeadStock,
	ModelMarkdown,
	ModelSustainability,
}

// Schema is the ordered input of one model. The order must match the column
// order the model was trained on.
type Schema struct {
	Model  ModelName
	Fields []Field
}

// Width is the length of the vector the model expects.
func (s Schema) Width() int { return len(s.Fields) }

// Names returns the field names in vector order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func mustSchema(model ModelName, names ...string) Schema {
	fields := make([]Field, len(names))
	for i, name := range names {
		f, ok := Lookup(name)
		if !ok {
			panic(fmt.Sprintf("features: schema %s references unknown field %q", model, name))
		}
		fields[i] = f
	}
	return Schema{Model: model, Fields: fields}
}

var shelfLifeFields = []string{
	"Historical_Sell_Through",
	"Forecasted_Demand",
	"Spoilage_Risk_Score",
	"Cold_Chain_Energy_Use",
	"Sensor_Anomalies",
	"Markdown_History",
	"Transport_Emissions",
	"Recyclability_Score",
	"Overstock_Risk",
	"Stockout_Risk",
	"Waste_Risk_Index",
}

var schemas = map[ModelName]Schema{
	ModelSpoilage: mustSchema(ModelSpoilage, shelfLifeFields...),
	ModelExpiry:   mustSchema(ModelExpiry, shelfLifeFields...),
	ModelDemand: mustSchema(ModelDemand,
		"Historical_Sell_Through",
		"Days_to_Expiry",
		"Spoilage_Risk_Score",
		"Sensor_Anomalies",
		"Holiday_Demand_Amplifier",
		"Upcoming_Local_Events",
		"Promo_Effectiveness",
		"Festival_Sales_Boost",
		"Stockout_Risk",
		"Overstock_Risk",
		"Recyclability_Score",
		"Markdown_History",
	),
	ModelDeadStock: mustSchema(ModelDeadStock,
		"Days_Since_Last_Sale",
		"Average_Turnover_Time",
		"Promo_Effectiveness",
		"Redundancy_Index",
		"Forecasted_Demand",
		"Historical_Sell_Through",
		"Shelf_Space_Efficiency",
		"Recyclability_Score",
		"Overstock_Risk",
		"Stockout_Risk",
	),
	ModelMarkdown: mustSchema(ModelMarkdown,
		"Spoilage_Risk_Score",
		"Days_to_Expiry",
		"Overstock_Risk",
		"Historical_Sell_Through",
		"Forecasted_Demand",
		"Dead_Inventory_Flag",
		"Promo_Effectiveness",
		"Cold_Chain_Energy_Use",
		"Sensor_Anomalies",
		"Waste_Risk_Index",
	),
	ModelSustainability: mustSchema(ModelSustainability,
		"Embedded_Carbon_Footprint",
		"Cold_Chain_Energy_Use",
		"Transport_Emissions",
		"Recycled_Content_Pct",
		"Recyclability_Score",
		"Compostability_Score",
		"Take_Back_Eligible",
		"Footprint_Factor",
	),
}

// SchemaFor returns the input schema of a model.
func SchemaFor(model ModelName) (Schema, bool) {
	s, ok := schemas[model]
	return s, ok
}

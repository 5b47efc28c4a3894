package features

import "strings"

// Kind is the storage type of a product feature.
type Kind string

const (
	KindFloat Kind = "float"
	KindInt   Kind = "int"
)

// Field describes one product feature. Name is the key used in JSON bodies,
// CSV headers and filter parameters; Column is the SQL column.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

func field(name string, kind Kind) Field {
	return Field{Name: name, Column: strings.ToLower(name), Kind: kind}
}

// Catalog lists every product feature in table order.
var Catalog = []Field{
	field("Historical_Sell_Through", KindFloat),
	field("Spoilage_Risk_Score", KindFloat),
	field("Cold_Chain_Energy_Use", KindFloat),
	field("Sensor_Anomalies", KindInt),
	field("Markdown_History", KindInt),
	field("Transport_Emissions", KindFloat),
	field("Recyclability_Score", KindFloat),
	field("Overstock_Risk", KindFloat),
	field("Stockout_Risk", KindFloat),
	field("Embedded_Carbon_Footprint", KindFloat),
	field("Recycled_Content_Pct", KindFloat),
	field("Compostability_Score", KindFloat),
	field("Take_Back_Eligible", KindInt),
	field("Footprint_Factor", KindFloat),
	field("Holiday_Demand_Amplifier", KindFloat),
	field("Upcoming_Local_Events", KindInt),
	field("Promo_Effectiveness", KindFloat),
	field("Festival_Sales_Boost", KindFloat),
	field("Days_Since_Last_Sale", KindInt),
	field("Average_Turnover_Time", KindFloat),
	field("Redundancy_Index", KindFloat),
	field("Shelf_Space_Efficiency", KindFloat),
	field("Waste_Risk_Index", KindFloat),
	field("Days_to_Expiry", KindInt),
	field("Forecasted_Demand", KindFloat),
	field("Dead_Inventory_Flag", KindInt),
}

var catalogIndex = func() map[string]Field {
	idx := make(map[string]Field, len(Catalog))
	for _, f := range Catalog {
		idx[f.Name] = f
	}
	return idx
}()

// Lookup returns the catalog entry for a feature name.
func Lookup(name string) (Field, bool) {
	f, ok := catalogIndex[name]
	return f, ok
}

// Columns returns the SQL column names of the catalog in table order.
func Columns() []string {
	cols := make([]string, len(Catalog))
	for i, f := range Catalog {
		cols[i] = f.Column
	}
	return cols
}

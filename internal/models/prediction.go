package models

import (
	"time"

	"github.com/google/uuid"
)

type Prediction struct {
	ID                       int64      `db:"id"`
	ProductID                int64      `db:"product_id"`
	SpoilageRisk             string     `db:"spoilage_risk"`
	DaysToExpiry             int        `db:"days_to_expiry_pred"`
	ForecastedDemand         float64    `db:"forecasted_demand_pred"`
	DeadStock                bool       `db:"dead_stock"`
	SuggestedMarkdownPercent float64    `db:"suggested_markdown_percent"`
	TriggerMarkdown          bool       `db:"trigger_markdown"`
	SustainabilityLabel      string     `db:"sustainability_label"`
	RunID                    *uuid.UUID `db:"run_id"` // batch run that produced the row, nil for on-demand
	CreatedAt                time.Time  `db:"created_at"`
	IsLatest                 bool       `db:"is_latest"`
}

// ProductPrediction pairs a product with its latest prediction, if any.
type ProductPrediction struct {
	Product    *Product
	Prediction *Prediction
}

package dto

import "time"

// PredictionResponse is the cached prediction block of a product.
type PredictionResponse struct {
	SpoilageRisk             string  `json:"spoilage_risk"`
	DaysToExpiryPred         int     `json:"days_to_expiry_pred"`
	ForecastedDemandPred     float64 `json:"forecasted_demand_pred"`
	DeadStock                bool    `json:"dead_stock"`
	SuggestedMarkdownPercent float64 `json:"suggested_markdown_percent"`
	TriggerMarkdown          bool    `json:"trigger_markdown"`
	SustainabilityLabel      string  `json:"sustainability_label"`
}

type PredictionHistoryItem struct {
	PredictionResponse
	RunID     string `json:"run_id,omitempty"`
	CreatedAt string `json:"created_at"`
	IsLatest  bool   `json:"is_latest"`
}

type PredictionHistoryResponse struct {
	SKU         string                  `json:"sku"`
	Predictions []PredictionHistoryItem `json:"predictions"`
}

type RunCacheResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Result  *BatchSummary `json:"result,omitempty"`
}

type BatchSummary struct {
	RunID        string        `json:"run_id"`
	Policy       string        `json:"policy"`
	Committed    bool          `json:"committed"`
	Total        int           `json:"total"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	Failures     []ItemFailure `json:"failures,omitempty"`
	DurationMS   int64         `json:"duration_ms"`
}

type ItemFailure struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FormatTime renders timestamps in API responses.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

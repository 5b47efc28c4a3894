package dto

// ProductResponse is a product with its features and latest prediction.
// Prediction is null when the product has no latest prediction.
type ProductResponse struct {
	SKU        string              `json:"sku"`
	Category   *string             `json:"category"`
	Features   map[string]any      `json:"features"`
	Prediction *PredictionResponse `json:"prediction"`
}

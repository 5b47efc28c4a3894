package service

import (
	"shelfpulse/internal/dto"
	"shelfpulse/internal/features"
	"shelfpulse/internal/inference"
	"shelfpulse/internal/models"

	"github.com/google/uuid"
)

func newPrediction(productID int64, res *inference.Result, runID *uuid.UUID) *models.Prediction {
	return &models.Prediction{
		ProductID:                productID,
		SpoilageRisk:             res.SpoilageRisk,
		DaysToExpiry:             res.DaysToExpiry,
		ForecastedDemand:         res.ForecastedDemand,
		DeadStock:                res.DeadStock,
		SuggestedMarkdownPercent: res.SuggestedMarkdownPercent,
		TriggerMarkdown:          res.TriggerMarkdown,
		SustainabilityLabel:      res.SustainabilityLabel,
		RunID:                    runID,
		IsLatest:                 true,
	}
}

func toPredictionResponse(p *models.Prediction) *dto.PredictionResponse {
	if p == nil {
		return nil
	}
	return &dto.PredictionResponse{
		SpoilageRisk:             p.SpoilageRisk,
		DaysToExpiryPred:         p.DaysToExpiry,
		ForecastedDemandPred:     p.ForecastedDemand,
		DeadStock:                p.DeadStock,
		SuggestedMarkdownPercent: p.SuggestedMarkdownPercent,
		TriggerMarkdown:          p.TriggerMarkdown,
		SustainabilityLabel:      p.SustainabilityLabel,
	}
}

func toProductResponse(p *models.Product, pred *models.Prediction) *dto.ProductResponse {
	feats := make(map[string]any, len(features.Catalog))
	for _, f := range features.Catalog {
		v, ok := p.Features[f.Name]
		switch {
		case !ok:
			feats[f.Name] = nil
		case f.Kind == features.KindInt:
			feats[f.Name] = int64(v)
		default:
			feats[f.Name] = v
		}
	}
	return &dto.ProductResponse{
		SKU:        p.SKU,
		Category:   p.Category,
		Features:   feats,
		Prediction: toPredictionResponse(pred),
	}
}

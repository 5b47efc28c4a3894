package handlers

import (
	"shelfpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PredictHandler struct {
	predictionService *service.PredictionService
	logger            *zap.Logger
}

func NewPredictHandler(predictionService *service.PredictionService, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{
		predictionService: predictionService,
		logger:            logger,
	}
}

// Predict godoc
// @Summary Predict one product
// @Description Run every model over one feature mapping. Nothing is stored.
// @Tags predict
// @Accept json
// @Produce json
// @Param features body object true "Feature name to value"
// @Success 200 {object} inference.Result
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /predict [post]
func (h *PredictHandler) Predict(c *fiber.Ctx) error {
	var data map[string]any
	if len(c.Body()) > 0 {
		if err := c.App().Config().JSONDecoder(c.Body(), &data); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON body",
			})
		}
	}

	res, err := h.predictionService.Predict(c.UserContext(), data)
	if err != nil {
		return writeError(c, h.logger, err, "Prediction failed")
	}
	return c.JSON(res)
}

// PredictCSV godoc
// @Summary Predict a CSV file
// @Description Predict every row of an uploaded CSV and return it with six prediction columns appended.
// @Tags predict
// @Accept multipart/form-data
// @Produce text/csv
// @Param file formData file true "Product feature table"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /predict_csv [post]
func (h *PredictHandler) PredictCSV(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return writeError(c, h.logger, service.ErrMissingUpload, "")
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	out, err := h.predictionService.PredictCSV(c.UserContext(), src)
	if err != nil {
		return writeError(c, h.logger, err, "CSV prediction failed")
	}

	c.Attachment("predicted_output.csv")
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Send(out)
}

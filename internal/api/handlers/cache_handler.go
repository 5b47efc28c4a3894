package handlers

import (
	"errors"

	"shelfpulse/internal/dto"
	"shelfpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CacheHandler struct {
	runner *service.BatchRunner
	logger *zap.Logger
}

func NewCacheHandler(runner *service.BatchRunner, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		runner: runner,
		logger: logger,
	}
}

// RunCache godoc
// @Summary Recompute cached predictions
// @Description Predict every product and store the results as their latest predictions.
// @Description Blocks until the whole catalog has been processed.
// @Tags cache
// @Produce json
// @Success 200 {object} dto.RunCacheResponse
// @Failure 409 {object} dto.RunCacheResponse
// @Failure 500 {object} dto.RunCacheResponse
// @Router /run_cache [post]
func (h *CacheHandler) RunCache(c *fiber.Ctx) error {
	res, err := h.runner.Run(c.UserContext())
	if errors.Is(err, service.ErrBatchInProgress) {
		return c.Status(fiber.StatusConflict).JSON(dto.RunCacheResponse{
			Status:  "error",
			Message: err.Error(),
		})
	}
	if err != nil {
		h.logger.Error("Batch run failed", zap.Error(err))
		resp := dto.RunCacheResponse{
			Status:  "error",
			Message: service.PublicMessage(err, "Failed to cache predictions"),
		}
		if res != nil {
			resp.Result = res.Summary()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}

	return c.JSON(dto.RunCacheResponse{
		Status:  "success",
		Message: "Predictions cached and updated.",
		Result:  res.Summary(),
	})
}

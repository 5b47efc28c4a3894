package handlers

import (
	"errors"

	"shelfpulse/internal/inference"
	"shelfpulse/internal/service"
	"shelfpulse/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeError maps a service error to a status code. Storage and unexpected
// errors are logged and answered with fallback instead of their message.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var inf *inference.InferenceError
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrBatchInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	case service.IsClientError(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.As(err, &inf):
		logger.Warn("Inference failed",
			zap.String("request_id", middleware.RequestID(c)),
			zap.String("model", string(inf.Model)),
			zap.Error(err),
		)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logger.Error(fallback,
		zap.String("request_id", middleware.RequestID(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fallback,
	})
}

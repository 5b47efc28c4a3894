package handlers

import (
	"strings"

	"shelfpulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HeaderIgnoredFilters lists query parameters a product search did not apply.
const HeaderIgnoredFilters = "X-Ignored-Filters"

type ProductHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewProductHandler(catalogService *service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// GetProduct godoc
// @Summary Get a product
// @Description Product features and its latest cached prediction (null when none).
// @Tags products
// @Produce json
// @Param sku path string true "Product SKU"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /product/{sku} [get]
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	resp, err := h.catalogService.GetBySKU(c.UserContext(), c.Params("sku"))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to get product")
	}
	return c.JSON(resp)
}

// ListProducts godoc
// @Summary Search products
// @Description Products with a latest prediction, filtered by any product or prediction field.
// @Description A parameter matches exactly; the _gt and _lt suffixes compare numbers.
// @Description Unknown parameters are ignored and echoed in X-Ignored-Filters.
// @Tags products
// @Produce json
// @Param limit query int false "Page size" default(100)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {array} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	result, err := h.catalogService.Search(c.UserContext(), c.Queries())
	if err != nil {
		return writeError(c, h.logger, err, "Failed to search products")
	}
	if len(result.Ignored) > 0 {
		c.Set(HeaderIgnoredFilters, strings.Join(result.Ignored, ","))
	}
	return c.JSON(result.Products)
}

// RefreshProduct godoc
// @Summary Refresh one product
// @Description Recompute the prediction of a product and make it the latest.
// @Tags products
// @Produce json
// @Param sku path string true "Product SKU"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /product/{sku}/refresh [post]
func (h *ProductHandler) RefreshProduct(c *fiber.Ctx) error {
	resp, err := h.catalogService.Refresh(c.UserContext(), c.Params("sku"))
	if err != nil {
		return writeError(c, h.logger, err, "Failed to refresh product")
	}
	return c.JSON(resp)
}

// ProductHistory godoc
// @Summary Prediction history
// @Description Stored predictions of a product, newest first.
// @Tags products
// @Produce json
// @Param sku path string true "Product SKU"
// @Param limit query int false "Maximum number of predictions" default(100)
// @Success 200 {object} dto.PredictionHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /product/{sku}/predictions [get]
func (h *ProductHandler) ProductHistory(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be a non-negative integer",
		})
	}

	resp, err := h.catalogService.History(c.UserContext(), c.Params("sku"), limit)
	if err != nil {
		return writeError(c, h.logger, err, "Failed to list predictions")
	}
	return c.JSON(resp)
}

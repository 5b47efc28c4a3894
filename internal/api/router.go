package api

import (
	"shelfpulse/docs"
	"shelfpulse/internal/api/handlers"
	"shelfpulse/pkg/config"
	"shelfpulse/pkg/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const liveMessage = "ShelfPulse API is live"

func SetupRouter(
	cfg *config.ServerConfig,
	predictHandler *handlers.PredictHandler,
	productHandler *handlers.ProductHandler,
	cacheHandler *handlers.CacheHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "shelfpulse",
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept",
		ExposeHeaders: handlers.HeaderIgnoredFilters + "," + middleware.HeaderRequestID,
	}))
	app.Use(middleware.RequestLogger(appLogger))

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(liveMessage)
	})

	api := app.Group("/api/v1")

	api.Post("/predict", predictHandler.Predict)
	api.Post("/predict_csv", predictHandler.PredictCSV)

	api.Get("/products", productHandler.ListProducts)
	product := api.Group("/product")
	product.Get("/:sku", productHandler.GetProduct)
	product.Post("/:sku/refresh", productHandler.RefreshProduct)
	product.Get("/:sku/predictions", productHandler.ProductHistory)

	api.Post("/run_cache", cacheHandler.RunCache)

	return app
}

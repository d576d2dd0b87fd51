// Package server exposes the intake, extraction, and search operations over
// HTTP.
package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"lease-backend/internal/common/config"
	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/observability"
)

// SetupApp creates and configures a new Fiber app instance.
func SetupApp(cfg *config.Config, h *Handlers, obs *observability.Observability, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           config.GetDuration(cfg.Server.ReadTimeout),
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				log.Warn("request failed", map[string]interface{}{
					"path":    c.Path(),
					"status":  e.Code,
					"message": e.Message,
				})
				return c.Status(e.Code).JSON(fiber.Map{
					"error": fiber.Map{
						"code":    e.Code,
						"message": e.Message,
					},
				})
			}

			status, body := errors.ToHTTPError(err)
			log.Warn("request failed", map[string]interface{}{
				"path":   c.Path(),
				"status": status,
				"code":   body.Code,
			})
			return c.Status(status).JSON(fiber.Map{"error": body})
		},
	})

	RegisterMiddleware(app, cfg, obs, log)
	RegisterRoutes(app, h)

	// Ensure all responses, including 404s, return JSON.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

// RegisterMiddleware attaches global middleware to the app.
func RegisterMiddleware(app *fiber.App, cfg *config.Config, obs *observability.Observability, log logger.Logger) {
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestid.New())
	app.Use(requestLogger(log))
	app.Use(requestMetrics(obs))

	if cfg.Server.APIToken != "" {
		app.Use(apiTokenAuth(cfg.Server.APIToken, log))
	}
}

// RegisterRoutes mounts all route handlers to the app.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	app.Get("/healthz", h.HandleHealth)

	api := app.Group("/api")

	applications := api.Group("/applications")
	applications.Post("/", h.HandleSubmitApplication)
	applications.Get("/search", h.HandleSearchApplications)
	applications.Get("/:id", h.HandleGetApplication)

	ai := api.Group("/ai")
	ai.Post("/process-lease", h.HandleProcessLease)
}

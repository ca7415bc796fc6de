package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tempofiller/internal/api/http/handlers"
	"github.com/spec-kit/tempofiller/internal/auth"
	"github.com/spec-kit/tempofiller/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
// A nil AuthMiddleware leaves the tool API unregistered.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Metrics        *handlers.MetricsHandler
	Tools          *handlers.ToolsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.AuthMiddleware == nil {
		app.Get("/metrics", cfg.Metrics.Get)
		return
	}

	app.Get("/metrics", cfg.AuthMiddleware.Handle, auth.RequireSubject(domain.SubjectTypeOperator), cfg.Metrics.Get)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireSubject())
	api.Get("/tools", cfg.Tools.List)
	api.Post("/tools/:name", cfg.Tools.Call)
}

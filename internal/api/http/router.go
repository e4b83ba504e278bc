package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Grievances  *handlers.GrievancesHandler
	Diagnostics *handlers.DiagnosticsHandler
	Metrics     nethttp.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)
	api.Get("/test-email", cfg.Diagnostics.TestEmail)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	grievances := api.Group("/grievances")
	grievances.Get("", cfg.Grievances.List)
	grievances.Get("/user/:userId", cfg.Grievances.ListByUser)
	grievances.Post("/add", cfg.Grievances.Add)
	grievances.Put("/update/:id", cfg.Grievances.Update)
}

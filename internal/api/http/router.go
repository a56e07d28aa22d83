package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookticket/user-service/internal/api/http/handlers"
	"github.com/bookticket/user-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)

	users := v1.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/me", cfg.Accounts.Me)
	users.Put("/me", cfg.Accounts.Update)
	users.Delete("/me", cfg.Accounts.Delete)
}

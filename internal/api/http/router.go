package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Password       *handlers.PasswordHandler
	AuthMiddleware *auth.AuthMiddleware
	Hierarchy      *auth.Hierarchy
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/accounts/register", cfg.Accounts.Register)
	app.Get("/confirmation/user", cfg.Accounts.ConfirmByUser)
	app.Get("/confirmation/office", cfg.Accounts.ConfirmByAdmin)

	app.Post("/auth/login", cfg.Accounts.Login)
	app.Post("/password/reset/request", cfg.Password.RequestReset)
	app.Post("/password/reset/complete", cfg.Password.CompleteReset)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/accounts/credentials", cfg.Accounts.ChangeCredentials)
	protected.Get("/accounts/scope", cfg.Accounts.CheckScope)
	protected.Post("/accounts/enabled",
		auth.RequireRole(cfg.Hierarchy, domain.RoleOffice),
		cfg.Accounts.ChangeEnabledStatus)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh-token", cfg.Auth.RefreshToken)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)

	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)
	authGroup.Put("/password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	admin := authGroup.Group("/users", cfg.AuthMiddleware.Handle)
	admin.Get("/", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Users.List)
	admin.Get("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Users.Get)
	admin.Put("/:id", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Users.Update)
	admin.Delete("/:id", auth.RequireRole(domain.RoleSuperAdmin), cfg.Users.Delete)
	admin.Post("/:id/activate", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Users.Activate)
	admin.Post("/:id/deactivate", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin), cfg.Users.Deactivate)
}

// Package router sets up all HTTP routes and middleware chains for the
// Theme Builder service. It organizes routes into public and admin groups
// with appropriate middleware stacks.
package router

import (
	"github.com/go-chi/chi/v5"

	"themebuilder/internal/handlers"
	"themebuilder/internal/middleware"
)

// Deps carries what the router wires into its routes. ResolveLimiter may
// be nil to leave /resolve unthrottled.
type Deps struct {
	Public         *handlers.Public
	Admin          *handlers.Admin
	Settings       *handlers.Settings
	AdminTokenHash string
	ResolveLimiter *middleware.RateLimiter
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)

	// Health check, no auth.
	r.Get("/health", d.Public.Health)

	// Resolution, called by the renderer on every page view.
	r.Group(func(r chi.Router) {
		if d.ResolveLimiter != nil {
			r.Use(d.ResolveLimiter.Middleware)
		}
		r.Get("/resolve", d.Public.Resolve)
	})

	// Admin API, bearer token required.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RequireToken(d.AdminTokenHash))

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", d.Admin.List)
			r.Post("/", d.Admin.Create)
			r.Get("/{id}", d.Admin.Get)
			r.Put("/{id}", d.Admin.Update)
			r.Delete("/{id}", d.Admin.Trash)
			r.Post("/{id}/toggle", d.Admin.Toggle)
		})

		r.Post("/cache/clear", d.Admin.ClearCache)
		r.Get("/cache/log", d.Admin.CacheLog)

		r.Get("/settings", d.Settings.Show)
		r.Put("/license", d.Settings.UpdateLicense)
	})

	return r
}

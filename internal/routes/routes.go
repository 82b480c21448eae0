package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/middleware"
)

// Handlers bundles the HTTP handlers the core routes need.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Billing *handlers.BillingHandler
	Webhook *handlers.WebhookHandler
	Admin   *handlers.AdminHandler
	Legal   *handlers.LegalHandler
}

func Setup(app *fiber.App, h Handlers, deps apps.Deps, plugins []apps.Plugin) {
	cfg := deps.Config

	// Registered ahead of the API limiter: provider retries must never be
	// throttled, and scrapes are not user traffic.
	app.Post("/api/webhooks/stripe", h.Webhook.HandleStripe)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// JWT is applied per route so it never leaks onto the public ones.
	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	api.Get("/auth/me", middleware.JWTProtected(cfg), h.Auth.Me)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), h.Auth.DeleteAccount)

	// Billing: checkout and portal identify the caller by userId in the body.
	billing := api.Group("/billing")
	billing.Get("/plans", h.Billing.Plans)
	billing.Post("/checkout", h.Billing.CreateCheckout)
	billing.Post("/portal", h.Billing.CreatePortal)
	billing.Get("/subscription", middleware.JWTProtected(cfg), h.Billing.GetSubscription)

	// Admin (X-Admin-Token, or JWT of an admin account)
	admin := api.Group("/admin", middleware.OptionalJWT(cfg), middleware.AdminRequired(deps.DB, cfg))
	admin.Get("/billing/webhook-events", h.Admin.ListWebhookEvents)

	// Plugin routes. Public routes go first so /api/p JWT never guards them.
	for _, p := range plugins {
		if pp, ok := p.(apps.PublicPlugin); ok {
			pp.RegisterPublicRoutes(api, deps)
		}
	}
	protected := api.Group("/p", middleware.JWTProtected(cfg))
	for _, p := range plugins {
		p.RegisterRoutes(protected, deps)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, deps)
		}
	}
}

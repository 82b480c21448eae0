package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
)

// CORS admits the web front end. Stripe calls the webhook server to server, so
// Stripe-Signature is never a browser header.
func CORS(cfg *config.Config) fiber.Handler {
	origins := strings.Join(parseCSV(cfg.CORSOrigins), ",")
	if origins == "" {
		origins = "*"
	}
	if origins == "*" && cfg.IsProduction() {
		slog.Warn("CORS_ORIGINS is '*' in production; set it to the front-end origin")
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Authorization, Accept, X-Admin-Token",
		AllowMethods:  "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        600,
	})
}

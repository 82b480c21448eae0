package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps/assistant"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/apps/planner"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/database"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/llm"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/logging"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/routes"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/services"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func registeredPlugins() []apps.Plugin {
	return []apps.Plugin{
		planner.New(),
		assistant.New(),
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	plugins := registeredPlugins()
	if err := migrate(db, plugins); err != nil {
		return err
	}

	// ERROR+ records are also stored in system_logs
	dbLogHandler := logging.NewDBHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		logging.Setup(cfg.LogLevel),
		dbLogHandler,
	)))

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	var aiClient llm.Client
	gemini, err := llm.NewGeminiClient(ctx, cfg)
	switch {
	case err == nil:
		aiClient = gemini
	case errors.Is(err, llm.ErrNotConfigured):
		slog.Warn("GEMINI_API_KEY not set; assistant routes disabled")
	default:
		return err
	}

	app := newApp(cfg, db, services.NewStripeProvider(cfg.StripeSecretKey), aiClient, plugins)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
		slog.Info("shutting down server...")
	case err := <-listenErr:
		if err != nil {
			slog.Error("server failed to start", "error", err)
		}
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

// newApp builds the fiber app with every route mounted. Migrations must
// already have run.
func newApp(cfg *config.Config, db *gorm.DB, provider services.PaymentProvider, aiClient llm.Client, plugins []apps.Plugin) *fiber.App {
	subs := store.NewSubscriptionStore(db)
	ledger := store.NewWebhookEventStore(db)

	authService := services.NewAuthService(db, cfg)
	billingService := services.NewBillingService(provider, subs, cfg.PlanPrices(), cfg.PublicURL)
	subscriptionService := services.NewSubscriptionService(subs, ledger)

	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService),
		Health:  handlers.NewHealthHandler(db, cfg),
		Billing: handlers.NewBillingHandler(billingService, cfg.PlanPrices()),
		Webhook: handlers.NewWebhookHandler(services.NewWebhookVerifier(cfg.StripeWebhookSecret), subscriptionService),
		Admin:   handlers.NewAdminHandler(ledger),
		Legal:   handlers.NewLegalHandler(cfg.AppName, cfg.SupportEmail),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, h, apps.Deps{
		DB:      db,
		Config:  cfg,
		LLM:     aiClient,
		Premium: middleware.PremiumRequired(subs),
	}, plugins)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", fmt.Sprint(c.Locals("requestid")),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}

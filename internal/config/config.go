package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv       string
	AppName      string
	SupportEmail string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceMonthly  string
	StripePriceYearly   string
	PublicURL           string

	// Gemini
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	AITimeout        time.Duration
	AIRatePerSecond  float64
	AIBurst          int

	// Admin
	AdminEmails string
	AdminToken  string

	// Server
	Port        string
	CORSOrigins string

	// Logging
	LogLevel         string
	LogRetentionDays int
	SentryDSN        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:       getEnv("APP_ENV", "development"),
		AppName:      getEnv("APP_NAME", "Shower Planner"),
		SupportEmail: getEnv("SUPPORT_EMAIL", "support@showerplanner.app"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "shower_planner"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceMonthly:  getEnv("STRIPE_PRICE_ID_MONTHLY", "price_1SVY9aB4fT5BrCYaPku93uL0"),
		StripePriceYearly:   getEnv("STRIPE_PRICE_ID_YEARLY", "price_1SVYAmB4fT5BrCYadbJ7RTfp"),
		PublicURL:           strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:3000"), "/"),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		AITimeout:        parseDuration(getEnv("AI_TIMEOUT", "60s")),
		AIRatePerSecond:  parseFloat(getEnv("AI_RATE_PER_SECOND", "2"), 2),
		AIBurst:          parseInt(getEnv("AI_BURST", "5"), 5),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

// Validate reports the first missing setting the server cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET environment variable is required")
	case c.DBPassword == "":
		return errors.New("DB_PASSWORD environment variable is required")
	case c.StripeWebhookSecret == "":
		return errors.New("STRIPE_WEBHOOK_SECRET environment variable is required")
	}
	return nil
}

// PlanPrices returns the recognized checkout price ids keyed by plan name.
func (c *Config) PlanPrices() map[string]string {
	plans := make(map[string]string, 2)
	if c.StripePriceMonthly != "" {
		plans["monthly"] = c.StripePriceMonthly
	}
	if c.StripePriceYearly != "" {
		plans["yearly"] = c.StripePriceYearly
	}
	return plans
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

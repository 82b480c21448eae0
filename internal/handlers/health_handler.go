package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/database"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
)

type HealthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewHealthHandler(db *gorm.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Services: map[string]bool{
			"stripe":  h.cfg.StripeSecretKey != "",
			"webhook": h.cfg.StripeWebhookSecret != "",
			"ai":      h.cfg.GeminiAPIKey != "",
		},
	})
}

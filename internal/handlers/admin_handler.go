package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/store"
)

type AdminHandler struct {
	ledger store.WebhookEventStore
}

func NewAdminHandler(ledger store.WebhookEventStore) *AdminHandler {
	return &AdminHandler{ledger: ledger}
}

var ledgerStatuses = map[string]bool{
	"":                             true,
	models.WebhookStatusProcessing: true,
	models.WebhookStatusProcessed:  true,
	models.WebhookStatusIgnored:    true,
	models.WebhookStatusFailed:     true,
}

// ListWebhookEvents shows recent ledger entries, newest first.
func (h *AdminHandler) ListWebhookEvents(c *fiber.Ctx) error {
	status := c.Query("status")
	if !ledgerStatuses[status] {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid status filter"})
	}

	events, err := h.ledger.List(c.UserContext(), status, c.QueryInt("limit", 50))
	if err != nil {
		slog.Error("list webhook events failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to list webhook events"})
	}

	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

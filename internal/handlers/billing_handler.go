package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/services"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/tenant"
)

type BillingHandler struct {
	billingService *services.BillingService
	prices         map[string]string
}

func NewBillingHandler(billingService *services.BillingService, prices map[string]string) *BillingHandler {
	return &BillingHandler{billingService: billingService, prices: prices}
}

// CreateCheckout opens a hosted checkout. The caller identifies itself with
// userId in the body.
func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	session, err := h.billingService.CreateCheckoutSession(c.UserContext(), req.PriceID, req.UserID, c.Get("Origin"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
		case errors.Is(err, services.ErrInvalidPlan):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid price"})
		}
		slog.Error("checkout session failed", "user_id", req.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to create checkout session"})
	}

	return c.JSON(dto.CheckoutResponse{SessionID: session.ID, URL: session.URL})
}

func (h *BillingHandler) CreatePortal(c *fiber.Ctx) error {
	var req dto.PortalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	url, err := h.billingService.CreatePortalSession(c.UserContext(), req.UserID, c.Get("Origin"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
		case errors.Is(err, services.ErrNoSubscription):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "No subscription found"})
		}
		slog.Error("portal session failed", "user_id", req.UserID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to create portal session"})
	}

	return c.JSON(dto.PortalResponse{URL: url})
}

func (h *BillingHandler) GetSubscription(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}

	rec, err := h.billingService.GetSubscription(c.UserContext(), userID.String())
	if err != nil {
		slog.Error("subscription lookup failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to load subscription"})
	}

	return c.JSON(dto.SubscriptionResponse{
		UserID:               rec.UserID,
		IsPremium:            rec.IsPremium,
		SubscriptionStatus:   string(rec.SubscriptionStatus),
		SubscriptionPlatform: rec.SubscriptionPlatform,
		SubscriptionTier:     rec.SubscriptionTier,
		SubscriptionStart:    rec.StartDate,
		SubscriptionEnd:      rec.EndDate,
		HasBillingPortal:     rec.CustomerID != nil && *rec.CustomerID != "",
	})
}

func (h *BillingHandler) Plans(c *fiber.Ctx) error {
	return c.JSON(dto.PlansResponse{Plans: h.prices})
}

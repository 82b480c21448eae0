package handlers

import (
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/services"
)

type WebhookHandler struct {
	verifier            *services.WebhookVerifier
	subscriptionService *services.SubscriptionService
}

func NewWebhookHandler(verifier *services.WebhookVerifier, subscriptionService *services.SubscriptionService) *WebhookHandler {
	return &WebhookHandler{
		verifier:            verifier,
		subscriptionService: subscriptionService,
	}
}

// HandleStripe verifies the signature over the raw body before anything is
// decoded, then hands the event to the reconciler.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	// Fiber reuses the body buffer after the handler returns.
	payload := append([]byte(nil), c.Body()...)

	event, err := h.verifier.Verify(payload, c.Get("Stripe-Signature"))
	if err != nil {
		metrics.WebhookRejected.Inc()
		slog.Warn("webhook signature rejected", "ip", c.IP())
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid signature"})
	}

	outcome, err := h.subscriptionService.HandleWebhookEvent(c.UserContext(), event)
	if err != nil {
		slog.Error("webhook processing failed", "event_id", event.ID, "event_type", string(event.Type), "error", err)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Webhook handler failed"})
	}

	slog.Info("webhook processed", "event_id", event.ID, "event_type", string(event.Type), "outcome", string(outcome))
	return c.JSON(dto.WebhookAck{Received: true, Duplicate: outcome == services.OutcomeDuplicate})
}

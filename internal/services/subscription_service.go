package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v82"
	"golang.org/x/sync/singleflight"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/store"
)

// Outcome is what happened to a verified webhook event.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeStale     Outcome = "stale"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
)

// SubscriptionService reconciles the stored subscription record with the
// payment provider's webhook events. Delivery is at-least-once and unordered,
// so every write is a full overwrite of the status-derived fields guarded by
// the event's creation time.
type SubscriptionService struct {
	subs   store.SubscriptionStore
	ledger store.WebhookEventStore
	group  singleflight.Group
}

func NewSubscriptionService(subs store.SubscriptionStore, ledger store.WebhookEventStore) *SubscriptionService {
	return &SubscriptionService{subs: subs, ledger: ledger}
}

// HandleWebhookEvent applies a verified event exactly once in effect. A
// returned error means the provider should redeliver.
func (s *SubscriptionService) HandleWebhookEvent(ctx context.Context, event *stripe.Event) (Outcome, error) {
	if event == nil || event.ID == "" {
		return "", errors.New("webhook event without id")
	}

	v, err, _ := s.group.Do(event.ID, func() (interface{}, error) {
		return s.handleOnce(ctx, event)
	})
	outcome, _ := v.(Outcome)
	metrics.WebhookEvents.WithLabelValues(string(event.Type), outcomeLabel(outcome, err)).Inc()
	return outcome, err
}

func (s *SubscriptionService) handleOnce(ctx context.Context, event *stripe.Event) (Outcome, error) {
	eventType := string(event.Type)
	prev, err := s.ledger.Begin(ctx, event.ID, eventType, time.Unix(event.Created, 0).UTC())
	if err != nil {
		return "", err
	}
	if prev != nil && (prev.Status == models.WebhookStatusProcessed || prev.Status == models.WebhookStatusIgnored) {
		slog.Info("webhook event already handled", "event_id", event.ID, "event_type", eventType)
		return OutcomeDuplicate, nil
	}

	// A verified event that does not decode is still recorded so it shows up
	// in the admin ledger.
	parsed, err := ParseEvent(event)
	if err != nil {
		s.recordFailure(ctx, event.ID, err)
		return "", err
	}

	outcome, userID, err := s.apply(ctx, parsed)
	if err != nil {
		s.recordFailure(ctx, event.ID, err)
		return "", err
	}

	status := models.WebhookStatusProcessed
	if outcome == OutcomeIgnored {
		status = models.WebhookStatusIgnored
	}
	if err := s.ledger.Finish(ctx, event.ID, status, userID); err != nil {
		// The record write already happened; redelivery re-applies the
		// same values.
		return "", err
	}
	return outcome, nil
}

func (s *SubscriptionService) recordFailure(ctx context.Context, eventID string, cause error) {
	if err := s.ledger.Fail(ctx, eventID, cause); err != nil {
		slog.Error("failed to record webhook failure", "event_id", eventID, "error", err)
	}
}

func (s *SubscriptionService) apply(ctx context.Context, event BillingEvent) (Outcome, string, error) {
	switch e := event.(type) {
	case *CheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, e)
	case *SubscriptionChanged:
		return s.handleSubscriptionChanged(ctx, e)
	case *InvoiceEvent:
		s.handleInvoice(e)
		return OutcomeApplied, "", nil
	default:
		slog.Info("webhook event ignored", "event_id", event.EventID(), "event_type", event.Kind())
		return OutcomeIgnored, "", nil
	}
}

func (s *SubscriptionService) handleCheckoutCompleted(ctx context.Context, e *CheckoutCompleted) (Outcome, string, error) {
	userID := e.Metadata["userId"]
	if userID == "" {
		slog.Warn("checkout completed without userId metadata", "event_id", e.EventID(), "session_id", e.SessionID)
		return OutcomeIgnored, "", nil
	}

	created := e.Created()
	identity := store.SubscriptionPatch{
		Platform:  strPtr(models.PlatformWeb),
		Tier:      strPtr(models.TierPremium),
		StartDate: &created,
	}
	if e.CustomerID != "" {
		identity.CustomerID = strPtr(e.CustomerID)
	}
	if e.SubscriptionID != "" {
		identity.SubscriptionID = strPtr(e.SubscriptionID)
	}
	if _, err := s.subs.Upsert(ctx, userID, identity); err != nil {
		return "", userID, fmt.Errorf("activate subscription: %w", err)
	}

	active := models.StatusActive
	applied, err := s.subs.Upsert(ctx, userID, store.SubscriptionPatch{
		IsPremium: boolPtr(true),
		Status:    &active,
		EventAt:   &created,
	})
	if err != nil {
		return "", userID, fmt.Errorf("activate subscription: %w", err)
	}
	if !applied {
		slog.Info("checkout status older than stored state", "event_id", e.EventID(), "user_id", userID)
		return OutcomeStale, userID, nil
	}

	slog.Info("premium activated", "user_id", userID, "event_id", e.EventID(), "subscription_id", e.SubscriptionID)
	return OutcomeApplied, userID, nil
}

func (s *SubscriptionService) handleSubscriptionChanged(ctx context.Context, e *SubscriptionChanged) (Outcome, string, error) {
	userID, err := s.resolveUser(ctx, e)
	if err != nil {
		return "", "", err
	}
	if userID == "" {
		slog.Warn("subscription event without resolvable userId", "event_id", e.EventID(), "subscription_id", e.SubscriptionID)
		return OutcomeIgnored, "", nil
	}

	created := e.Created()
	status := e.Status
	patch := store.SubscriptionPatch{
		IsPremium: boolPtr(status.GrantsPremium()),
		Status:    &status,
		EndDate:   e.CurrentPeriodEnd,
		EventAt:   &created,
	}
	if e.SubscriptionID != "" {
		patch.ForSubscription = strPtr(e.SubscriptionID)
	}
	applied, err := s.subs.Upsert(ctx, userID, patch)
	if err != nil {
		return "", userID, fmt.Errorf("update subscription status: %w", err)
	}
	if !applied {
		slog.Info("stale or superseded subscription event discarded", "event_id", e.EventID(), "user_id", userID, "subscription_id", e.SubscriptionID, "status", string(status))
		return OutcomeStale, userID, nil
	}

	slog.Info("subscription status updated", "user_id", userID, "event_id", e.EventID(), "status", string(status), "deleted", e.Deleted)
	return OutcomeApplied, userID, nil
}

// resolveUser prefers the metadata stamped at checkout and falls back to the
// record already linked to the subscription.
func (s *SubscriptionService) resolveUser(ctx context.Context, e *SubscriptionChanged) (string, error) {
	if id := e.Metadata["userId"]; id != "" {
		return id, nil
	}
	if e.SubscriptionID == "" {
		return "", nil
	}
	rec, err := s.subs.FindBySubscriptionID(ctx, e.SubscriptionID)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.UserID, nil
}

func (s *SubscriptionService) handleInvoice(e *InvoiceEvent) {
	if e.Failed {
		slog.Warn("invoice payment failed", "event_id", e.EventID(), "invoice_id", e.InvoiceID, "customer_id", e.CustomerID, "amount_due", e.AmountDue)
		return
	}
	slog.Info("invoice paid", "event_id", e.EventID(), "invoice_id", e.InvoiceID, "customer_id", e.CustomerID, "amount_paid", e.AmountPaid, "currency", e.Currency)
}

func outcomeLabel(o Outcome, err error) string {
	if err != nil {
		return "error"
	}
	return string(o)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/store"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidPlan    = errors.New("invalid price")
	ErrNoSubscription = errors.New("no subscription found")
)

// BillingService opens hosted checkout and billing-portal sessions. It never
// writes the subscription record; that only happens once the provider
// confirms payment through the webhook.
type BillingService struct {
	provider  PaymentProvider
	store     store.SubscriptionStore
	prices    map[string]bool
	publicURL string
}

func NewBillingService(provider PaymentProvider, subs store.SubscriptionStore, planPrices map[string]string, publicURL string) *BillingService {
	prices := make(map[string]bool, len(planPrices))
	for _, id := range planPrices {
		prices[id] = true
	}
	return &BillingService{
		provider:  provider,
		store:     subs,
		prices:    prices,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// CreateCheckoutSession validates the caller and plan, then opens a checkout
// session tagged with the user id so the webhook can attribute it. A returning
// user checks out as their existing customer so the portal keeps owning the
// live subscription.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, priceID, userID, origin string) (*CheckoutSession, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	if !s.prices[priceID] {
		return nil, ErrInvalidPlan
	}

	var customerID string
	rec, err := s.store.Get(ctx, userID)
	switch {
	case err == nil:
		if rec.CustomerID != nil {
			customerID = *rec.CustomerID
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	base := s.baseURL(origin)
	session, err := s.provider.CreateCheckoutSession(ctx, CheckoutParams{
		PriceID:    priceID,
		UserID:     userID,
		CustomerID: customerID,
		SuccessURL: base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/pricing",
		Metadata: map[string]string{
			"userId":   userID,
			"platform": models.PlatformWeb,
		},
	})
	if err != nil {
		metrics.CheckoutSessions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	metrics.CheckoutSessions.WithLabelValues("created").Inc()
	return session, nil
}

// CreatePortalSession opens the self-service portal for the user's stored
// customer. No provider call is made when the user has never checked out.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID, origin string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrUnauthorized
	}

	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoSubscription
	}
	if err != nil {
		return "", err
	}
	if rec.CustomerID == nil || *rec.CustomerID == "" {
		return "", ErrNoSubscription
	}

	url, err := s.provider.CreatePortalSession(ctx, *rec.CustomerID, s.baseURL(origin)+"/dashboard")
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return url, nil
}

// GetSubscription returns the caller's billing record, or a non-premium
// placeholder when none exists yet.
func (s *BillingService) GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.UserSubscription{UserID: userID}, nil
	}
	return rec, err
}

func (s *BillingService) baseURL(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return s.publicURL
	}
	return origin
}

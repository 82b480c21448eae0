package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*CheckoutSession)
	return s, args.Error(1)
}

func (m *mockProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newEvent(t *testing.T, id, kind string, created time.Time, object map[string]interface{}) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return &stripe.Event{
		ID:      id,
		Type:    stripe.EventType(kind),
		Created: created.Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func checkoutEvent(t *testing.T, id string, created time.Time, userID, sub, cus string) *stripe.Event {
	meta := map[string]string{}
	if userID != "" {
		meta["userId"] = userID
	}
	return newEvent(t, id, EventCheckoutCompleted, created, map[string]interface{}{
		"id":           "cs_" + id,
		"object":       "checkout.session",
		"customer":     cus,
		"subscription": sub,
		"metadata":     meta,
	})
}

func subscriptionEvent(t *testing.T, id, kind string, created time.Time, sub, status string, meta map[string]string, periodEnd int64) *stripe.Event {
	obj := map[string]interface{}{
		"id":       sub,
		"object":   "subscription",
		"customer": "cus_1",
		"status":   status,
		"metadata": meta,
	}
	if periodEnd > 0 {
		obj["current_period_end"] = periodEnd
	}
	return newEvent(t, id, kind, created, obj)
}

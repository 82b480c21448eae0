package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// CheckoutParams describes a hosted subscription checkout to open.
type CheckoutParams struct {
	PriceID    string
	UserID     string
	CustomerID string // empty lets the provider create a new customer
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentProvider is the slice of the payment provider API the billing
// endpoints need.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// StripeProvider talks to Stripe through a breaker so a provider outage fails
// fast instead of stacking slow requests. It never retries.
type StripeProvider struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker[string]
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{
		api: client.New(secretKey, nil),
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "stripe",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:          stripe.String(in.SuccessURL),
		CancelURL:           stripe.String(in.CancelURL),
		ClientReferenceID:   stripe.String(in.UserID),
		AllowPromotionCodes: stripe.Bool(true),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: in.Metadata,
		},
	}
	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	var session *stripe.CheckoutSession
	_, err := p.breaker.Execute(func() (string, error) {
		s, err := p.api.CheckoutSessions.New(params)
		if err != nil {
			return "", err
		}
		session = s
		return s.ID, nil
	})
	if err != nil {
		return nil, wrapBreaker("create checkout session", err)
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	url, err := p.breaker.Execute(func() (string, error) {
		s, err := p.api.BillingPortalSessions.New(params)
		if err != nil {
			return "", err
		}
		return s.URL, nil
	})
	if err != nil {
		return "", wrapBreaker("create portal session", err)
	}
	return url, nil
}

var ErrProviderUnavailable = errors.New("payment provider unavailable")

func wrapBreaker(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", op, ErrProviderUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

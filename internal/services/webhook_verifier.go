package services

import (
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

var ErrInvalidSignature = errors.New("invalid signature")

// WebhookVerifier authenticates provider callbacks against the shared signing
// secret. The signature is checked over the raw body before it is decoded.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify returns the decoded event envelope, or ErrInvalidSignature for any
// failure. The underlying reason is deliberately not exposed.
func (v *WebhookVerifier) Verify(payload []byte, signatureHeader string) (*stripe.Event, error) {
	if v.secret == "" || strings.TrimSpace(signatureHeader) == "" {
		return nil, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if event.ID == "" || event.Type == "" {
		return nil, ErrInvalidSignature
	}
	return &event, nil
}

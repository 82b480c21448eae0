package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
)

const (
	EventCheckoutCompleted       = "checkout.session.completed"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
	EventInvoicePaid             = "invoice.paid"
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
)

// BillingEvent is a verified provider event decoded into the schema of its
// kind. The concrete types below are the only implementations.
type BillingEvent interface {
	EventID() string
	Kind() string
	Created() time.Time
}

type eventHeader struct {
	id      string
	kind    string
	created time.Time
}

func (h eventHeader) EventID() string    { return h.id }
func (h eventHeader) Kind() string       { return h.kind }
func (h eventHeader) Created() time.Time { return h.created }

type CheckoutCompleted struct {
	eventHeader
	SessionID      string
	CustomerID     string
	SubscriptionID string
	Metadata       map[string]string
}

// SubscriptionChanged covers both updated and deleted subscriptions; Deleted
// distinguishes them.
type SubscriptionChanged struct {
	eventHeader
	SubscriptionID   string
	CustomerID       string
	Status           models.SubscriptionStatus
	CurrentPeriodEnd *time.Time
	Metadata         map[string]string
	Deleted          bool
}

type InvoiceEvent struct {
	eventHeader
	InvoiceID      string
	CustomerID     string
	SubscriptionID string
	AmountPaid     int64
	AmountDue      int64
	Currency       string
	Failed         bool
}

// UnrecognizedEvent is any kind this service does not act on.
type UnrecognizedEvent struct {
	eventHeader
}

type checkoutSessionPayload struct {
	ID           string            `json:"id"`
	Customer     stripeRef         `json:"customer"`
	Subscription stripeRef         `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
}

type subscriptionPayload struct {
	ID               string            `json:"id"`
	Customer         stripeRef         `json:"customer"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

type invoicePayload struct {
	ID           string    `json:"id"`
	Customer     stripeRef `json:"customer"`
	Subscription stripeRef `json:"subscription"`
	AmountPaid   int64     `json:"amount_paid"`
	AmountDue    int64     `json:"amount_due"`
	Currency     string    `json:"currency"`
}

// stripeRef accepts either an id string or an expanded object with an id.
type stripeRef string

func (r *stripeRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = ""
		return nil
	}
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*r = stripeRef(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = stripeRef(obj.ID)
	return nil
}

// ParseEvent decodes a verified event into its typed variant. Unknown kinds
// yield UnrecognizedEvent rather than an error.
func ParseEvent(event *stripe.Event) (BillingEvent, error) {
	if event == nil {
		return nil, fmt.Errorf("nil event")
	}
	h := eventHeader{
		id:      event.ID,
		kind:    string(event.Type),
		created: time.Unix(event.Created, 0).UTC(),
	}

	var raw json.RawMessage
	if event.Data != nil {
		raw = event.Data.Raw
	}

	switch h.kind {
	case EventCheckoutCompleted:
		var p checkoutSessionPayload
		if err := decodeObject(raw, &p); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		return &CheckoutCompleted{
			eventHeader:    h,
			SessionID:      p.ID,
			CustomerID:     string(p.Customer),
			SubscriptionID: string(p.Subscription),
			Metadata:       p.Metadata,
		}, nil

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var p subscriptionPayload
		if err := decodeObject(raw, &p); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		if p.Status == "" {
			return nil, fmt.Errorf("decode subscription %s: missing status", p.ID)
		}
		periodEnd := p.CurrentPeriodEnd
		if periodEnd == 0 && len(p.Items.Data) > 0 {
			periodEnd = p.Items.Data[0].CurrentPeriodEnd
		}
		var end *time.Time
		if periodEnd > 0 {
			t := time.Unix(periodEnd, 0).UTC()
			end = &t
		}
		return &SubscriptionChanged{
			eventHeader:      h,
			SubscriptionID:   p.ID,
			CustomerID:       string(p.Customer),
			Status:           models.SubscriptionStatus(p.Status),
			CurrentPeriodEnd: end,
			Metadata:         p.Metadata,
			Deleted:          h.kind == EventSubscriptionDeleted,
		}, nil

	case EventInvoicePaid, EventInvoicePaymentSucceeded, EventInvoicePaymentFailed:
		var p invoicePayload
		if err := decodeObject(raw, &p); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		return &InvoiceEvent{
			eventHeader:    h,
			InvoiceID:      p.ID,
			CustomerID:     string(p.Customer),
			SubscriptionID: string(p.Subscription),
			AmountPaid:     p.AmountPaid,
			AmountDue:      p.AmountDue,
			Currency:       p.Currency,
			Failed:         h.kind == EventInvoicePaymentFailed,
		}, nil
	}

	return &UnrecognizedEvent{eventHeader: h}, nil
}

func decodeObject(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty event object")
	}
	return json.Unmarshal(raw, v)
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
)

func TestParseEvent_CheckoutCompleted(t *testing.T) {
	ev := checkoutEvent(t, "evt_1", baseTime, "u1", "sub_1", "cus_1")

	parsed, err := ParseEvent(ev)
	require.NoError(t, err)

	cc, ok := parsed.(*CheckoutCompleted)
	require.True(t, ok)
	assert.Equal(t, "evt_1", cc.EventID())
	assert.Equal(t, EventCheckoutCompleted, cc.Kind())
	assert.Equal(t, baseTime, cc.Created())
	assert.Equal(t, "cus_1", cc.CustomerID)
	assert.Equal(t, "sub_1", cc.SubscriptionID)
	assert.Equal(t, "u1", cc.Metadata["userId"])
}

func TestParseEvent_ExpandedReferences(t *testing.T) {
	ev := newEvent(t, "evt_2", EventCheckoutCompleted, baseTime, map[string]interface{}{
		"id":           "cs_2",
		"customer":     map[string]interface{}{"id": "cus_9", "object": "customer"},
		"subscription": nil,
	})

	parsed, err := ParseEvent(ev)
	require.NoError(t, err)
	cc := parsed.(*CheckoutCompleted)
	assert.Equal(t, "cus_9", cc.CustomerID)
	assert.Empty(t, cc.SubscriptionID)
}

func TestParseEvent_SubscriptionPeriodEnd(t *testing.T) {
	end := baseTime.Add(30 * 24 * time.Hour)

	t.Run("top level", func(t *testing.T) {
		ev := subscriptionEvent(t, "evt_3", EventSubscriptionUpdated, baseTime, "sub_1", "past_due", nil, end.Unix())
		parsed, err := ParseEvent(ev)
		require.NoError(t, err)
		sc := parsed.(*SubscriptionChanged)
		assert.Equal(t, models.StatusPastDue, sc.Status)
		require.NotNil(t, sc.CurrentPeriodEnd)
		assert.Equal(t, end, *sc.CurrentPeriodEnd)
		assert.False(t, sc.Deleted)
	})

	t.Run("from first item", func(t *testing.T) {
		ev := newEvent(t, "evt_4", EventSubscriptionDeleted, baseTime, map[string]interface{}{
			"id":     "sub_1",
			"status": "canceled",
			"items": map[string]interface{}{
				"data": []map[string]interface{}{{"current_period_end": end.Unix()}},
			},
		})
		parsed, err := ParseEvent(ev)
		require.NoError(t, err)
		sc := parsed.(*SubscriptionChanged)
		require.NotNil(t, sc.CurrentPeriodEnd)
		assert.Equal(t, end, *sc.CurrentPeriodEnd)
		assert.True(t, sc.Deleted)
	})

	t.Run("absent", func(t *testing.T) {
		ev := subscriptionEvent(t, "evt_5", EventSubscriptionUpdated, baseTime, "sub_1", "active", nil, 0)
		parsed, err := ParseEvent(ev)
		require.NoError(t, err)
		assert.Nil(t, parsed.(*SubscriptionChanged).CurrentPeriodEnd)
	})
}

func TestParseEvent_Errors(t *testing.T) {
	_, err := ParseEvent(nil)
	assert.Error(t, err)

	missingStatus := newEvent(t, "evt_6", EventSubscriptionUpdated, baseTime, map[string]interface{}{"id": "sub_1"})
	_, err = ParseEvent(missingStatus)
	assert.Error(t, err)

	empty := &stripe.Event{ID: "evt_7", Type: EventCheckoutCompleted, Data: &stripe.EventData{}}
	_, err = ParseEvent(empty)
	assert.Error(t, err)
}

func TestParseEvent_InvoiceAndUnknown(t *testing.T) {
	ev := newEvent(t, "evt_8", EventInvoicePaymentFailed, baseTime, map[string]interface{}{
		"id":         "in_1",
		"customer":   "cus_1",
		"amount_due": 1999,
		"currency":   "usd",
	})
	parsed, err := ParseEvent(ev)
	require.NoError(t, err)
	inv := parsed.(*InvoiceEvent)
	assert.True(t, inv.Failed)
	assert.EqualValues(t, 1999, inv.AmountDue)

	unknown := newEvent(t, "evt_9", "customer.created", baseTime, map[string]interface{}{"id": "cus_1"})
	parsed, err = ParseEvent(unknown)
	require.NoError(t, err)
	_, ok := parsed.(*UnrecognizedEvent)
	assert.True(t, ok)
}

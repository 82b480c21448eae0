package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/store"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/testutil"
)

var testPrices = map[string]string{"monthly": "price_monthly", "yearly": "price_yearly"}

func newBillingService(t *testing.T) (*BillingService, *mockProvider, *store.GormSubscriptionStore) {
	t.Helper()
	subs := store.NewSubscriptionStore(testutil.NewDB(t))
	provider := new(mockProvider)
	return NewBillingService(provider, subs, testPrices, "https://shower.example/"), provider, subs
}

func TestBillingService_CreateCheckoutSession(t *testing.T) {
	svc, provider, subs := newBillingService(t)
	ctx := context.Background()

	provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p CheckoutParams) bool {
		return p.PriceID == "price_monthly" &&
			p.UserID == "u1" &&
			p.SuccessURL == "https://app.example/success?session_id={CHECKOUT_SESSION_ID}" &&
			p.CancelURL == "https://app.example/pricing" &&
			p.Metadata["userId"] == "u1" &&
			p.Metadata["platform"] == "web"
	})).Return(&CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}, nil).Once()

	session, err := svc.CreateCheckoutSession(ctx, "price_monthly", "u1", "https://app.example/")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.test/cs_1", session.URL)
	provider.AssertExpectations(t)

	// Opening checkout never touches the record.
	_, err = subs.Get(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBillingService_CheckoutReusesStoredCustomer(t *testing.T) {
	svc, provider, subs := newBillingService(t)
	ctx := context.Background()

	_, err := subs.Upsert(ctx, "u1", store.SubscriptionPatch{CustomerID: strPtr("cus_1"), SubscriptionID: strPtr("sub_1")})
	require.NoError(t, err)

	provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p CheckoutParams) bool {
		return p.UserID == "u1" && p.CustomerID == "cus_1"
	})).Return(&CheckoutSession{ID: "cs_3", URL: "u"}, nil).Once()
	provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p CheckoutParams) bool {
		return p.UserID == "u2" && p.CustomerID == ""
	})).Return(&CheckoutSession{ID: "cs_4", URL: "u"}, nil).Once()

	_, err = svc.CreateCheckoutSession(ctx, "price_monthly", "u1", "")
	require.NoError(t, err)
	_, err = svc.CreateCheckoutSession(ctx, "price_monthly", "u2", "")
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestBillingService_CheckoutFallsBackToPublicURL(t *testing.T) {
	svc, provider, _ := newBillingService(t)

	provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p CheckoutParams) bool {
		return p.CancelURL == "https://shower.example/pricing"
	})).Return(&CheckoutSession{ID: "cs_2", URL: "u"}, nil).Once()

	_, err := svc.CreateCheckoutSession(context.Background(), "price_yearly", "u1", "")
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestBillingService_CheckoutRejections(t *testing.T) {
	svc, provider, _ := newBillingService(t)
	ctx := context.Background()

	_, err := svc.CreateCheckoutSession(ctx, "price_monthly", "", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreateCheckoutSession(ctx, "price_unknown", "u1", "")
	assert.ErrorIs(t, err, ErrInvalidPlan)

	provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestBillingService_CheckoutProviderFailure(t *testing.T) {
	svc, provider, _ := newBillingService(t)
	provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, errors.New("card_declined")).Once()

	_, err := svc.CreateCheckoutSession(context.Background(), "price_monthly", "u1", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidPlan)
}

func TestBillingService_CreatePortalSession(t *testing.T) {
	svc, provider, subs := newBillingService(t)
	ctx := context.Background()

	_, err := svc.CreatePortalSession(ctx, "", "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CreatePortalSession(ctx, "u1", "")
	assert.ErrorIs(t, err, ErrNoSubscription)

	_, err = subs.Upsert(ctx, "u2", store.SubscriptionPatch{Tier: strPtr("premium")})
	require.NoError(t, err)
	_, err = svc.CreatePortalSession(ctx, "u2", "")
	assert.ErrorIs(t, err, ErrNoSubscription)
	provider.AssertNotCalled(t, "CreatePortalSession", mock.Anything, mock.Anything, mock.Anything)

	_, err = subs.Upsert(ctx, "u1", store.SubscriptionPatch{CustomerID: strPtr("cus_1")})
	require.NoError(t, err)
	provider.On("CreatePortalSession", mock.Anything, "cus_1", "https://shower.example/dashboard").
		Return("https://billing.stripe.test/p/1", nil).Once()

	url, err := svc.CreatePortalSession(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.stripe.test/p/1", url)
	provider.AssertExpectations(t)
}

func TestBillingService_GetSubscriptionPlaceholder(t *testing.T) {
	svc, _, _ := newBillingService(t)

	rec, err := svc.GetSubscription(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.UserID)
	assert.False(t, rec.IsPremium)
}

package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/config"
)

const JWTSecret = "test-jwt-secret"

// Config returns a configuration suitable for handler tests.
func Config() *config.Config {
	return &config.Config{
		AppEnv:              "test",
		JWTSecret:           JWTSecret,
		JWTAccessExpiry:     15 * time.Minute,
		JWTRefreshExpiry:    time.Hour,
		StripeWebhookSecret: "whsec_test_secret",
		StripePriceMonthly:  "price_monthly",
		StripePriceYearly:   "price_yearly",
		PublicURL:           "https://shower.example",
		CORSOrigins:         "*",
	}
}

// BearerToken signs an access token for userID the way the auth service does.
func BearerToken(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID.String(),
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

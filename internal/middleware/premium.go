package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/dto"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/store"
	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/tenant"
)

// PremiumRequired lets a request through only when the caller's billing record
// grants premium. Only grants are cached, so a downgrade takes effect within
// premiumCacheTTL and a fresh upgrade takes effect immediately.
func PremiumRequired(subs store.SubscriptionStore) fiber.Handler {
	return premiumRequired(subs, cache.New(premiumCacheTTL, 2*premiumCacheTTL))
}

const premiumCacheTTL = 30 * time.Second

func premiumRequired(subs store.SubscriptionStore, c *cache.Cache) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		userID, err := tenant.GetUserID(ctx)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
		}
		key := userID.String()

		if _, ok := c.Get(key); ok {
			return ctx.Next()
		}

		premium := false
		rec, err := subs.Get(ctx.UserContext(), key)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			slog.Error("premium check failed", "user_id", key, "error", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal server error"})
		default:
			premium = rec.IsPremium
		}

		if !premium {
			return paymentRequired(ctx)
		}
		c.SetDefault(key, true)
		return ctx.Next()
	}
}

func paymentRequired(c *fiber.Ctx) error {
	return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{Error: "Premium subscription required"})
}

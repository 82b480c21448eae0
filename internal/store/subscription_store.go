// Package store persists billing state. All writes to a user's subscription
// record go through a single INSERT ... ON CONFLICT statement so concurrent
// webhook deliveries cannot lose each other's fields.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/shower-planner/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("subscription record not found")

// SubscriptionPatch is a partial update of a UserSubscription. Nil fields are
// left untouched.
type SubscriptionPatch struct {
	CustomerID     *string // set once; an existing value is never replaced
	SubscriptionID *string
	IsPremium      *bool
	Status         *models.SubscriptionStatus
	Platform       *string
	Tier           *string
	StartDate      *time.Time
	EndDate        *time.Time

	// EventAt is the provider's creation time for the event carrying this
	// patch. When set, the patch is skipped if the record already reflects a
	// newer event.
	EventAt *time.Time

	// ForSubscription, when set, skips the patch if the record is already
	// linked to a different subscription. Events for a superseded
	// subscription must not touch the live one.
	ForSubscription *string
}

// SubscriptionStore is the persistence contract used by the reconciler and
// the billing endpoints.
type SubscriptionStore interface {
	Get(ctx context.Context, userID string) (*models.UserSubscription, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.UserSubscription, error)
	// Upsert merges patch into the record for userID, creating it if needed.
	// It reports false when the ordering or subscription guard suppressed the
	// write.
	Upsert(ctx context.Context, userID string, patch SubscriptionPatch) (bool, error)
}

type GormSubscriptionStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSubscriptionStore(db *gorm.DB) *GormSubscriptionStore {
	return &GormSubscriptionStore{db: db, now: time.Now}
}

func (s *GormSubscriptionStore) Get(ctx context.Context, userID string) (*models.UserSubscription, error) {
	var rec models.UserSubscription
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", userID, err)
	}
	return &rec, nil
}

func (s *GormSubscriptionStore) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*models.UserSubscription, error) {
	var rec models.UserSubscription
	err := s.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find subscription %s: %w", subscriptionID, err)
	}
	return &rec, nil
}

func (s *GormSubscriptionStore) Upsert(ctx context.Context, userID string, patch SubscriptionPatch) (bool, error) {
	if userID == "" {
		return false, errors.New("upsert subscription: empty user id")
	}
	now := s.now().UTC()

	row := models.UserSubscription{
		UserID:         userID,
		CustomerID:     patch.CustomerID,
		SubscriptionID: patch.SubscriptionID,
		StartDate:      patch.StartDate,
		EndDate:        patch.EndDate,
		LastEventAt:    patch.EventAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	updates := map[string]interface{}{
		"updated_at": now,
	}

	if patch.CustomerID != nil {
		updates["customer_id"] = gorm.Expr("COALESCE(user_subscriptions.customer_id, excluded.customer_id)")
	}
	if patch.SubscriptionID != nil {
		updates["subscription_id"] = *patch.SubscriptionID
	}
	if patch.IsPremium != nil {
		row.IsPremium = *patch.IsPremium
		updates["is_premium"] = *patch.IsPremium
	}
	if patch.Status != nil {
		row.SubscriptionStatus = *patch.Status
		updates["subscription_status"] = string(*patch.Status)
	}
	if patch.Platform != nil {
		row.SubscriptionPlatform = *patch.Platform
		updates["subscription_platform"] = *patch.Platform
	}
	if patch.Tier != nil {
		row.SubscriptionTier = *patch.Tier
		updates["subscription_tier"] = *patch.Tier
	}
	if patch.StartDate != nil {
		updates["subscription_start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		updates["subscription_end_date"] = *patch.EndDate
	}

	var guards []clause.Expression
	if patch.EventAt != nil {
		updates["last_event_at"] = *patch.EventAt
		guards = append(guards, clause.Expr{
			SQL:  "(user_subscriptions.last_event_at IS NULL OR user_subscriptions.last_event_at <= ?)",
			Vars: []interface{}{*patch.EventAt},
		})
	}
	if patch.ForSubscription != nil {
		guards = append(guards, clause.Expr{
			SQL:  "(user_subscriptions.subscription_id IS NULL OR user_subscriptions.subscription_id = ?)",
			Vars: []interface{}{*patch.ForSubscription},
		})
	}

	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}
	if len(guards) > 0 {
		onConflict.Where = clause.Where{Exprs: guards}
	}

	result := s.db.WithContext(ctx).Clauses(onConflict).Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("upsert subscription %s: %w", userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

package models

import "time"

// SubscriptionStatus mirrors the payment provider's subscription status verbatim.
type SubscriptionStatus string

const (
	StatusActive            SubscriptionStatus = "active"
	StatusTrialing          SubscriptionStatus = "trialing"
	StatusPastDue           SubscriptionStatus = "past_due"
	StatusCanceled          SubscriptionStatus = "canceled"
	StatusUnpaid            SubscriptionStatus = "unpaid"
	StatusIncomplete        SubscriptionStatus = "incomplete"
	StatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
)

// AllStatuses lists the documented provider statuses.
var AllStatuses = []SubscriptionStatus{
	StatusActive, StatusTrialing, StatusPastDue, StatusCanceled,
	StatusUnpaid, StatusIncomplete, StatusIncompleteExpired,
}

// GrantsPremium reports whether a subscription in this status unlocks premium
// features. IsPremium must always equal this for the stored status.
func (s SubscriptionStatus) GrantsPremium() bool {
	return s == StatusActive || s == StatusTrialing
}

const (
	PlatformWeb = "web"
	TierPremium = "premium"
)

// UserSubscription is the per-user billing record. It is written only by the
// webhook reconciler.
type UserSubscription struct {
	UserID               string             `gorm:"primaryKey;size:128" json:"userId"`
	CustomerID           *string            `gorm:"size:255;index" json:"customerId,omitempty"`
	SubscriptionID       *string            `gorm:"size:255;index" json:"subscriptionId,omitempty"`
	IsPremium            bool               `gorm:"not null;default:false" json:"isPremium"`
	SubscriptionStatus   SubscriptionStatus `gorm:"size:32" json:"subscriptionStatus,omitempty"`
	SubscriptionPlatform string             `gorm:"size:20" json:"subscriptionPlatform,omitempty"`
	SubscriptionTier     string             `gorm:"size:32" json:"subscriptionTier,omitempty"`
	StartDate            *time.Time         `gorm:"column:subscription_start_date" json:"subscriptionStartDate,omitempty"`
	EndDate              *time.Time         `gorm:"column:subscription_end_date" json:"subscriptionEndDate,omitempty"`
	LastEventAt          *time.Time         `json:"-"` // created time of the last applied status event
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

package dto

import "time"

type CheckoutRequest struct {
	PriceID string `json:"priceId"`
	UserID  string `json:"userId"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type PortalRequest struct {
	UserID string `json:"userId"`
}

type PortalResponse struct {
	URL string `json:"url"`
}

type WebhookAck struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

type SubscriptionResponse struct {
	UserID               string     `json:"userId"`
	IsPremium            bool       `json:"isPremium"`
	SubscriptionStatus   string     `json:"subscriptionStatus,omitempty"`
	SubscriptionPlatform string     `json:"subscriptionPlatform,omitempty"`
	SubscriptionTier     string     `json:"subscriptionTier,omitempty"`
	SubscriptionStart    *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionEnd      *time.Time `json:"subscriptionEndDate,omitempty"`
	HasBillingPortal     bool       `json:"hasBillingPortal"`
}

type PlansResponse struct {
	Plans map[string]string `json:"plans"`
}

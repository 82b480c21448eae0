package models

import "time"

const (
	WebhookStatusProcessing = "processing"
	WebhookStatusProcessed  = "processed"
	WebhookStatusIgnored    = "ignored"
	WebhookStatusFailed     = "failed"
)

// WebhookEvent is the idempotency ledger for verified provider events.
type WebhookEvent struct {
	EventID      string     `gorm:"primaryKey;size:255" json:"event_id"`
	EventType    string     `gorm:"size:100;not null;index" json:"event_type"`
	Status       string     `gorm:"size:20;not null;index" json:"status"`
	UserID       string     `gorm:"size:128;index" json:"user_id,omitempty"`
	Attempts     int        `gorm:"not null;default:0" json:"attempts"`
	LastError    string     `gorm:"type:text" json:"last_error,omitempty"`
	EventCreated time.Time  `json:"event_created"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}

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

// WebhookEventStore is the idempotency ledger for provider events.
type WebhookEventStore interface {
	// Begin records an attempt for the event and returns the ledger entry as
	// it stood before this attempt. A nil entry means the event is new.
	Begin(ctx context.Context, eventID, eventType string, created time.Time) (*models.WebhookEvent, error)
	Finish(ctx context.Context, eventID, status, userID string) error
	Fail(ctx context.Context, eventID string, cause error) error
	List(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error)
}

type GormWebhookEventStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewWebhookEventStore(db *gorm.DB) *GormWebhookEventStore {
	return &GormWebhookEventStore{db: db, now: time.Now}
}

func (s *GormWebhookEventStore) Begin(ctx context.Context, eventID, eventType string, created time.Time) (*models.WebhookEvent, error) {
	var previous *models.WebhookEvent
	now := s.now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.WebhookEvent
		err := tx.Where("event_id = ?", eventID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			previous = &existing
		}

		if previous != nil && isTerminal(previous.Status) {
			return nil
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     models.WebhookStatusProcessing,
				"attempts":   gorm.Expr("webhook_events.attempts + 1"),
				"updated_at": now,
			}),
		}).Create(&models.WebhookEvent{
			EventID:      eventID,
			EventType:    eventType,
			Status:       models.WebhookStatusProcessing,
			Attempts:     1,
			EventCreated: created.UTC(),
			CreatedAt:    now,
			UpdatedAt:    now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("begin webhook event %s: %w", eventID, err)
	}
	return previous, nil
}

func (s *GormWebhookEventStore) Finish(ctx context.Context, eventID, status, userID string) error {
	now := s.now().UTC()
	err := s.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":       status,
			"user_id":      userID,
			"last_error":   "",
			"processed_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return fmt.Errorf("finish webhook event %s: %w", eventID, err)
	}
	return nil
}

func (s *GormWebhookEventStore) Fail(ctx context.Context, eventID string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	err := s.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"status":     models.WebhookStatusFailed,
			"last_error": msg,
			"updated_at": s.now().UTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("fail webhook event %s: %w", eventID, err)
	}
	return nil
}

func (s *GormWebhookEventStore) List(ctx context.Context, status string, limit int) ([]models.WebhookEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.WithContext(ctx).Order("updated_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var events []models.WebhookEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list webhook events: %w", err)
	}
	return events, nil
}

func isTerminal(status string) bool {
	return status == models.WebhookStatusProcessed || status == models.WebhookStatusIgnored
}

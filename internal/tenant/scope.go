package tenant

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForHost returns a GORM scope that filters by host_id.
func ForHost(hostID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("host_id = ?", hostID)
	}
}

// ForEvent returns a GORM scope that filters child rows by event_id.
func ForEvent(eventID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("event_id = ?", eventID)
	}
}

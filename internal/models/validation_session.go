package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ValidationSession tracks a (medium, address) ownership proof in progress.
// The session-validation subsystem creates and validates these; the core
// consumes them during bind to resolve sid + client_secret into a proven
// 3PID. Mtime is a millisecond timestamp of the last state change.
type ValidationSession struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"sid"`
	ClientSecret string `gorm:"not null;index" json:"-"`
	Medium       string `gorm:"not null" json:"medium"`
	Address      string `gorm:"not null" json:"address"`
	Validated    bool   `gorm:"not null;default:false" json:"validated"`
	Mtime        int64  `gorm:"not null;index" json:"-"`
}

func (ValidationSession) TableName() string { return "validation_sessions" }

// BeforeCreate assigns a fresh session id when none was supplied.
func (s *ValidationSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

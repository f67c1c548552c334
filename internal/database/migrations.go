package database

import (
	"gorm.io/gorm"

	"github.com/perchard/trustbind/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.InviteToken{},
		&models.Account{},
		&models.AuthToken{},
		&models.ValidationSession{},
	)
}

package repositories

import (
	"judicial-archive/internal/models"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Block{},
		&models.Row{},
		&models.Section{},
		&models.Document{},
		&models.Paper{},
		&models.AuditLog{},
	)
}

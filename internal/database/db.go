package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"cardops-backend/internal/config"
	"cardops-backend/internal/models"
)

// Init opens the Postgres pool and runs migrations. The handle is returned
// rather than kept in a package global so handlers receive it explicitly.
func Init(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Could not connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		logrus.Fatalf("AutoMigrate failed: %v", err)
	}

	logrus.Info("Database connected, migration complete")
	return db
}

// Migrate is separate from Init so tests can run it against their own DB.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Bank{},
		&models.Department{},
		&models.User{},
		&models.Device{},
		&models.Vendor{},
		&models.Category{},
		&models.JobCode{},
		&models.BankCardStock{},
		&models.CardIssue{},
		&models.ReleasedCard{},
		&models.MailerJob{},
		&models.CardJob{},
		&models.QcEntry{},
		&models.QcChangeLog{},
		&models.StoreItem{},
		&models.Product{},
		&models.Transaction{},
		&models.AuditLog{},
	)
}

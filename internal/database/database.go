package database

import (
	"github.com/rishee01/smartfix/internal/config"
	"github.com/rishee01/smartfix/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Report{},
		&model.User{},
		&model.Volunteer{},
		&model.Verification{},
		&model.AdminUser{},
	)
	if err != nil {
		return err
	}

	// One verification per (report, user); backstop behind the
	// lookup-before-insert check in the verify transaction.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_verifications_report_user ON verifications(report_id, user_id)")

	return nil
}

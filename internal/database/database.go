package database

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/glossary/api/internal/model"
)

func Connect(url string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.AuditEntry{}); err != nil {
		return err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_glossary_audit_created_at ON glossary_audit_entries(created_at DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_glossary_audit_term ON glossary_audit_entries(lower(term))")

	return nil
}

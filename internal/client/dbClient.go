package client

import (
	"fmt"
	"stripe-checkout-backend/internal/model"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitSqliteClient opens (or creates) the sqlite database at path and
// ensures the schema exists. Safe to call on an existing database.
// TranslateError is on so a UNIQUE violation surfaces as
// gorm.ErrDuplicatedKey instead of a driver-specific error.
func InitSqliteClient(databasePath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}

	// sqlite allows a single writer; keep one connection to avoid
	// SQLITE_BUSY under concurrent webhook deliveries.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Order{},
		&model.WebhookEvent{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

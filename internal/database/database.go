package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/botify/storebot/backend/internal/config"
)

// Dialector picks the gorm driver from the database URL scheme.
func Dialector(url string) (gorm.Dialector, error) {
	trimmed := strings.TrimSpace(url)
	switch {
	case strings.HasPrefix(trimmed, "postgres://"), strings.HasPrefix(trimmed, "postgresql://"):
		return postgres.Open(trimmed), nil
	case strings.HasPrefix(trimmed, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(trimmed, "sqlite://")), nil
	case strings.HasPrefix(trimmed, "file:"):
		return sqlite.Open(trimmed), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", redact(trimmed))
	}
}

// Connect opens the configured database and verifies the connection.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// redact hides credentials in error messages.
func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}

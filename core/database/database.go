package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the local sqlite database.
// It returns a *gorm.DB connection or an error if the open fails.
func Connect(cfg Config) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "reader-sync.db"
	}

	timeout := cfg.BusyTimeoutMillis
	if timeout <= 0 {
		timeout = 5000
	}

	// _busy_timeout makes concurrent readers wait instead of failing with
	// SQLITE_BUSY. Foreign keys are off by default in sqlite and must be
	// enabled per connection.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on", path, timeout)
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared&_foreign_keys=on"
	}

	// Suppress GORM logging; the application logger reports store failures.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// A single writer connection sidesteps sqlite write-lock contention.
	// All local-store mutation is funneled through one connection, which is
	// the designated reconciliation context callers must marshal onto.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

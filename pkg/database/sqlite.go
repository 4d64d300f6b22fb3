package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/pkg/logger"
)

// NewSQLiteConnection opens a SQLite database for local runs and tests.
//
// SQLite has no row locks, so the pool is pinned to one connection: every
// transaction is serialized and the guarded updates never race. In-memory
// DSNs must use a shared cache ("file:name?mode=memory&cache=shared") so the
// schema survives connection recycling.
func NewSQLiteConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	logger.Logger.Info().
		Str("dsn", dsn).
		Msg("Opened SQLite database")
	return db, nil
}

// MemoryDSN names a private shared-cache in-memory database
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
}

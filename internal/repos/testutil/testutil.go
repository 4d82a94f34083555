package testutil

import (
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mkarlin/chatdeck-backend/internal/db"
	"github.com/mkarlin/chatdeck-backend/internal/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a fresh migrated database per test: in-memory SQLite by
// default, or the Postgres pointed at by TEST_POSTGRES_DSN when set
// (closer to production layout).
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}

	var (
		gormDB *gorm.DB
		err    error
	)
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		gormDB, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		// A named shared-cache database keeps every pooled connection on
		// the same in-memory store, isolated per test.
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
		gormDB, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}

	if os.Getenv("TEST_POSTGRES_DSN") != "" {
		// Postgres instances are shared; run the test inside a
		// transaction and roll it back on cleanup.
		tx := gormDB.Begin()
		tb.Cleanup(func() { tx.Rollback() })
		return tx
	}
	return gormDB
}

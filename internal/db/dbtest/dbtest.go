// Package dbtest opens throwaway SQLite databases for package tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"demo_wallet/internal/db"

	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated database backed by a file in t.TempDir(), with the pool held
// at one connection. A unit of work that holds the connection makes every other caller
// wait in the pool, which is what timeout tests rely on.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return OpenPool(t, 1)
}

// OpenPool is Open with up to maxConns connections, so units of work really run side by
// side. SQLite has no row locks: transactions begin IMMEDIATE and writers queue on the
// database write lock, waiting up to the busy timeout.
func OpenPool(t testing.TB, maxConns int) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "wallet.db") + "?_busy_timeout=10000&_txlock=immediate"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log, _ := test.NewNullLogger()
	if err := db.Migrate(gdb, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

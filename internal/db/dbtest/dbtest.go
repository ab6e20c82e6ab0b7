// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"hypoforum/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var memSeq atomic.Int64

// Open returns a migrated, isolated in-memory sqlite database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:hypoforum_test_%d?mode=memory&cache=shared", memSeq.Add(1))
	gdb, err := db.Open("sqlite", dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

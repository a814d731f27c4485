// Package sqlitedb opens a migrated in-memory database for tests.
package sqlitedb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"hr-admin-backend/internal/domain/user"
	"hr-admin-backend/internal/infrastructure/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a fresh, migrated database private to t. Every connection in
// the pool sees the same data; it disappears when the test ends.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:hradmin_test_%d?mode=memory&cache=shared&_busy_timeout=5000", seq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// SeedUser inserts a user with a predictable public id.
func SeedUser(t *testing.T, gdb *gorm.DB, name string, role user.Role) *user.User {
	t.Helper()
	n := seq.Add(1)
	u := &user.User{
		UserID:       fmt.Sprintf("%032x", n),
		Name:         name,
		Email:        fmt.Sprintf("user%d@example.com", n),
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	if err := gdb.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

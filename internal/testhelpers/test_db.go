// Package testhelpers provides shared fixtures for package tests.
package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/msvee3/Interview-prep/internal/models"
)

// SetupTestDB creates an isolated in-memory SQLite database with the users
// table migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// DropUserTable removes the users table to force repository errors.
func DropUserTable(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Migrator().DropTable(&models.User{}); err != nil {
		t.Fatalf("failed to drop user table: %v", err)
	}
}

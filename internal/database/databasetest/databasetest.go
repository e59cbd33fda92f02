// Package databasetest provides migrated throwaway databases for tests.
package databasetest

import (
	"context"
	"database/sql"
	"path/filepath"
	"runtime"
	"testing"

	"supermarket-inventory/internal/database"
)

// MigrationsRoot returns the absolute path of the repository's migrations directory.
func MigrationsRoot(t testing.TB) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	return filepath.Join(filepath.Dir(filename), "..", "..", "..", "migrations")
}

// SQLiteURL returns a migrate-style URL for a fresh database file in t.TempDir().
func SQLiteURL(t testing.TB) string {
	t.Helper()
	return "sqlite3://" + filepath.Join(t.TempDir(), "inventory.db")
}

// SQLite opens a fully migrated SQLite database that is closed on cleanup.
func SQLite(t testing.TB) *sql.DB {
	t.Helper()
	url := SQLiteURL(t)
	return Open(t, database.SQLite, url)
}

// Open migrates and opens the database behind url.
func Open(t testing.TB, driver database.Driver, url string) *sql.DB {
	t.Helper()
	if err := database.Migrate(driver, url, MigrationsRoot(t)); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	db, err := database.Open(context.Background(), driver, url, database.Pool{MaxOpenConns: 4, MaxIdleConns: 2})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

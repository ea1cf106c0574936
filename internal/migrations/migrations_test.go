package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/arcaderooms/internal/database"
	"github.com/playperu/arcaderooms/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), database.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db, "sqlite3"); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	var name string
	err = db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", "rooms",
	).Scan(&name)
	if err != nil {
		t.Errorf("table %q not found: %v", "rooms", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), database.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := migrations.Run(db, "sqlite3"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(db, "sqlite3"); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEAT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.StoreDriver != "libsql" || cfg.MaxPlayers != 5 || cfg.DealerStandsOn != 17 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.SeatTTL != 24*time.Hour {
		t.Errorf("SeatTTL = %v", cfg.SeatTTL)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SEAT_SECRET", "")
	os.Unsetenv("SEAT_SECRET")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without SEAT_SECRET")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"postgres without url", map[string]string{"STORE_DRIVER": "postgres"}},
		{"unknown reshuffle", map[string]string{"BLACKJACK_RESHUFFLE": "never"}},
		{"no seats", map[string]string{"MAX_PLAYERS": "0"}},
		{"more seats than a deck deals", map[string]string{"MAX_PLAYERS": "7"}},
		{"above the table cap", map[string]string{"MAX_PLAYERS": "6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SEAT_SECRET", "s3cret")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SEAT_SECRET=from-file\nMAX_PLAYERS=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("MAX_PLAYERS", "4")
	// godotenv sets what it loads; make sure the test does not leak it.
	t.Setenv("SEAT_SECRET", "")
	os.Unsetenv("SEAT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeatSecret != "from-file" {
		t.Errorf("SeatSecret = %q, want from-file", cfg.SeatSecret)
	}
	if cfg.MaxPlayers != 4 {
		t.Errorf("MaxPlayers = %d, want the environment's 4", cfg.MaxPlayers)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("expected memory backend default, got %s", cfg.Storage)
	}
	if cfg.SuggestHorizon != 8*time.Hour {
		t.Fatalf("expected 8h horizon default, got %v", cfg.SuggestHorizon)
	}
	if cfg.AvailabilityCacheTTL != 30*time.Second {
		t.Fatalf("expected 30s cache TTL default, got %v", cfg.AvailabilityCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SCHEDULER_HTTP_PORT", "9090")
	t.Setenv("SCHEDULER_STORAGE", "sqlite")
	t.Setenv("SCHEDULER_SQLITE_DSN", "file:test.db")
	t.Setenv("SCHEDULER_SUGGEST_HORIZON", "2h")
	t.Setenv("SCHEDULER_SEED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != 9090 || cfg.Storage != StorageSQLite || cfg.SQLiteDSN != "file:test.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SuggestHorizon != 2*time.Hour || !cfg.Seed {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadInvalidAccumulates(t *testing.T) {
	t.Setenv("SCHEDULER_HTTP_PORT", "-1")
	t.Setenv("SCHEDULER_STORAGE", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for invalid values")
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BATCH_POLICY", "")
	t.Setenv("LOOKUP_DEFAULT_LIMIT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Batch.Policy != "all_or_nothing" {
		t.Errorf("Batch.Policy = %q", cfg.Batch.Policy)
	}
	if cfg.Lookup.DefaultLimit != 100 {
		t.Errorf("Lookup.DefaultLimit = %d", cfg.Lookup.DefaultLimit)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %s", cfg.Server.ReadTimeout)
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("BATCH_POLICY", "sometimes")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "ten")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsMaxBelowDefault(t *testing.T) {
	t.Setenv("LOOKUP_DEFAULT_LIMIT", "500")
	t.Setenv("LOOKUP_MAX_LIMIT", "100")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}

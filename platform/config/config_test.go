package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://app.example.com ,")
	t.Setenv("SHUTDOWN_TIMEOUT", "bogus")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.GetCORSOrigins()) != 2 || cfg.GetCORSOrigins()[1] != "https://app.example.com" {
		t.Fatalf("unexpected origins %v", cfg.GetCORSOrigins())
	}
	if cfg.GetShutdownTimeout() != 10*time.Second {
		t.Fatalf("expected fallback shutdown timeout, got %s", cfg.GetShutdownTimeout())
	}
	if cfg.GetPhoneAPIRatePerSec() <= 0 || cfg.GetPhoneAPIBurst() <= 0 {
		t.Fatalf("expected positive phone API limits")
	}
}

func TestLoadRejectsWildcardWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for wildcard origins with credentials")
	}
}

func TestLoadRejectsNonPositiveRateLimit(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/crm")
	t.Setenv("PHONE_API_BURST", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero burst")
	}
}

package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/caseledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.JWTSecret != "" {
		t.Fatalf("expected JWT secret default to be empty, got %q", cfg.JWTSecret)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if !cfg.DefaultPercentA.Equal(decimal.RequireFromString("68.42105")) {
		t.Fatalf("expected default percent 68.42105, got %s", cfg.DefaultPercentA)
	}

	if cfg.ReportTimezone != "UTC" || cfg.AllowHardDelete || cfg.ClosingSchedule != "" {
		t.Fatalf("unexpected allocation defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("DEFAULT_PERCENT_A", "60")
	t.Setenv("REPORT_TIMEZONE", "America/Argentina/Buenos_Aires")
	t.Setenv("ALLOW_HARD_DELETE", "true")
	t.Setenv("CLOSING_SCHEDULE", "5 0 * * *")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.JWTSecret != "top-secret" || !cfg.AuthEnabled {
		t.Fatalf("expected auth settings to be set, got secret=%s enabled=%v", cfg.JWTSecret, cfg.AuthEnabled)
	}

	if !cfg.DefaultPercentA.Equal(decimal.NewFromInt(60)) || !cfg.AllowHardDelete {
		t.Fatalf("expected allocation overrides, got pct=%s hardDelete=%v", cfg.DefaultPercentA, cfg.AllowHardDelete)
	}

	loc, err := cfg.Location()
	if err != nil || loc.String() != "America/Argentina/Buenos_Aires" {
		t.Fatalf("expected Buenos Aires location, got %v err=%v", loc, err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"percent above 100", "DEFAULT_PERCENT_A", "120"},
		{"negative percent", "DEFAULT_PERCENT_A", "-1"},
		{"percent too precise", "DEFAULT_PERCENT_A", "68.421052"},
		{"unknown timezone", "REPORT_TIMEZONE", "Mars/Olympus"},
		{"bad cron", "CLOSING_SCHEDULE", "every day"},
		{"auth without secret", "AUTH_ENABLED", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			t.Setenv(tt.key, tt.val)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

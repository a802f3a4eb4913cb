package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable LoadEnvConfig reads so host environment
// leakage cannot skew a test.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"DATABASE_URL", "APP_HOST", "APP_PORT",
		"CONCURRENCY", "SCHEDULER_TICK",
		"RETENTION_DAYS", "RETENTION_SCHEDULE",
		"APP_TIMEZONE",
		"AUTH_ENABLED", "AUTH_USERNAME", "AUTH_PASSWORD",
		"SESSION_SECRET_KEY", "SESSION_MAX_AGE",
		"TARGETS_SEED_FILE", "API_MAX_BODY_BYTES",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
	t.Setenv("DATABASE_URL", "/tmp/uptime.db")
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("APP_PORT", "8000")
	t.Setenv("CONCURRENCY", "20")
	t.Setenv("SCHEDULER_TICK", "60s")
	t.Setenv("RETENTION_DAYS", "35")
	t.Setenv("RETENTION_SCHEDULE", "0 */6 * * *")
	t.Setenv("APP_TIMEZONE", "Europe/Amsterdam")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_USERNAME", "admin")
	t.Setenv("AUTH_PASSWORD", "change-me")
	t.Setenv("SESSION_SECRET_KEY", "secret")
	t.Setenv("SESSION_MAX_AGE", "86400")
	t.Setenv("API_MAX_BODY_BYTES", "1048576")

	cfg, err := LoadEnvConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseURL != "/tmp/uptime.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.AppPort != 8000 || cfg.Concurrency != 20 || cfg.RetentionDays != 35 {
		t.Errorf("unexpected numeric config: %+v", cfg)
	}
	if cfg.SchedulerTick != 60*time.Second {
		t.Errorf("SchedulerTick = %v", cfg.SchedulerTick)
	}
	if !cfg.AuthEnabled || cfg.AuthUsername != "admin" {
		t.Errorf("auth config: %+v", cfg)
	}
}

func TestLoadEnvConfig_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_PORT", "8000")
	t.Setenv("CONCURRENCY", "20")
	t.Setenv("SCHEDULER_TICK", "60s")
	t.Setenv("RETENTION_DAYS", "35")
	t.Setenv("RETENTION_SCHEDULE", "0 */6 * * *")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("SESSION_SECRET_KEY", "secret")
	t.Setenv("SESSION_MAX_AGE", "86400")
	t.Setenv("API_MAX_BODY_BYTES", "1048576")
	t.Setenv("APP_HOST", "0.0.0.0")

	_, err := LoadEnvConfig()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error does not mention DATABASE_URL: %v", err)
	}
}

func TestLoadEnvConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "APP_PORT", "70000"},
		{"non-numeric port", "APP_PORT", "eighty"},
		{"negative concurrency", "CONCURRENCY", "-1"},
		{"bad tick", "SCHEDULER_TICK", "sixty"},
		{"zero retention", "RETENTION_DAYS", "0"},
		{"bad cron", "RETENTION_SCHEDULE", "not a cron"},
		{"bad timezone", "APP_TIMEZONE", "Mars/Olympus"},
		{"bad bool", "AUTH_ENABLED", "yep"},
		{"zero body limit", "API_MAX_BODY_BYTES", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_HOST", "0.0.0.0")
			t.Setenv("APP_PORT", "8000")
			t.Setenv("CONCURRENCY", "20")
			t.Setenv("SCHEDULER_TICK", "60s")
			t.Setenv("RETENTION_DAYS", "35")
			t.Setenv("RETENTION_SCHEDULE", "0 */6 * * *")
			t.Setenv("APP_TIMEZONE", "UTC")
			t.Setenv("AUTH_ENABLED", "false")
			t.Setenv("SESSION_SECRET_KEY", "secret")
			t.Setenv("SESSION_MAX_AGE", "86400")
			t.Setenv("API_MAX_BODY_BYTES", "1048576")

			t.Setenv(tc.key, tc.value)
			if _, err := LoadEnvConfig(); err == nil {
				t.Errorf("%s=%q accepted", tc.key, tc.value)
			}
		})
	}
}

func TestLoadEnvConfig_AuthRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_HOST", "0.0.0.0")
	t.Setenv("APP_PORT", "8000")
	t.Setenv("CONCURRENCY", "20")
	t.Setenv("SCHEDULER_TICK", "60s")
	t.Setenv("RETENTION_DAYS", "35")
	t.Setenv("RETENTION_SCHEDULE", "0 */6 * * *")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("AUTH_USERNAME", "")
	t.Setenv("AUTH_PASSWORD", "")
	t.Setenv("SESSION_SECRET_KEY", "secret")
	t.Setenv("SESSION_MAX_AGE", "86400")
	t.Setenv("API_MAX_BODY_BYTES", "1048576")

	if _, err := LoadEnvConfig(); err == nil {
		t.Fatal("expected error for empty credentials with auth enabled")
	}
}

func TestIsWeakPassword(t *testing.T) {
	weak := []string{"change-me", "password", "admin123", "qwerty"}
	for _, p := range weak {
		if !IsWeakPassword(p) {
			t.Errorf("IsWeakPassword(%q) = false, want true", p)
		}
	}
	if IsWeakPassword("kM2#vP9!xQ4@wL7sTr0ng") {
		t.Error("strong password flagged as weak")
	}
}

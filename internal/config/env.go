// Package config handles environment-based configuration loading.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// EnvConfig holds all environment-variable-driven settings.
type EnvConfig struct {
	// Database
	DatabaseURL string

	// Network
	AppHost string
	AppPort int

	// Scheduler
	Concurrency   int
	SchedulerTick time.Duration

	// Retention
	RetentionDays     int
	RetentionSchedule string

	// Frontend
	AppTimezone string

	// Auth
	AuthEnabled  bool
	AuthUsername string
	AuthPassword string

	// Session cookie
	SessionSecretKey string
	SessionMaxAge    int

	// Optional startup seeding
	TargetsSeedFile string

	// API
	APIMaxBodyBytes int
}

// LoadEnvConfig reads environment variables and returns a validated EnvConfig.
// Returns an error if any required variable is missing or any value is invalid.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	var errs []string

	cfg.DatabaseURL = strings.TrimSpace(envStr("DATABASE_URL", ""))

	cfg.AppHost = strings.TrimSpace(envStr("APP_HOST", "0.0.0.0"))
	cfg.AppPort = envInt("APP_PORT", 8000, &errs)

	cfg.Concurrency = envInt("CONCURRENCY", 20, &errs)
	cfg.SchedulerTick = envDuration("SCHEDULER_TICK", 60*time.Second, &errs)

	cfg.RetentionDays = envInt("RETENTION_DAYS", 35, &errs)
	cfg.RetentionSchedule = envStr("RETENTION_SCHEDULE", "0 */6 * * *")

	cfg.AppTimezone = envStr("APP_TIMEZONE", "Europe/Amsterdam")

	cfg.AuthEnabled = envBool("AUTH_ENABLED", true, &errs)
	cfg.AuthUsername = envStr("AUTH_USERNAME", "admin")
	cfg.AuthPassword = envStr("AUTH_PASSWORD", "change-me")

	cfg.SessionSecretKey = envStr("SESSION_SECRET_KEY", "change-me-session-secret")
	cfg.SessionMaxAge = envInt("SESSION_MAX_AGE", 86400, &errs)

	cfg.TargetsSeedFile = strings.TrimSpace(envStr("TARGETS_SEED_FILE", ""))

	cfg.APIMaxBodyBytes = envInt("API_MAX_BODY_BYTES", 1<<20, &errs)

	// --- Validation ---
	if cfg.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL must be defined")
	}
	if cfg.AppHost == "" {
		errs = append(errs, "APP_HOST must not be empty")
	}
	validatePort("APP_PORT", cfg.AppPort, &errs)
	validatePositive("CONCURRENCY", cfg.Concurrency, &errs)
	if cfg.SchedulerTick <= 0 {
		errs = append(errs, "SCHEDULER_TICK must be positive")
	}
	validatePositive("RETENTION_DAYS", cfg.RetentionDays, &errs)
	if _, err := cron.ParseStandard(cfg.RetentionSchedule); err != nil {
		errs = append(errs, fmt.Sprintf("RETENTION_SCHEDULE: invalid cron expression %q: %v", cfg.RetentionSchedule, err))
	}
	if _, err := time.LoadLocation(cfg.AppTimezone); err != nil {
		errs = append(errs, fmt.Sprintf("APP_TIMEZONE: unknown timezone %q", cfg.AppTimezone))
	}
	if cfg.AuthEnabled {
		if cfg.AuthUsername == "" {
			errs = append(errs, "AUTH_USERNAME must not be empty when AUTH_ENABLED is true")
		}
		if cfg.AuthPassword == "" {
			errs = append(errs, "AUTH_PASSWORD must not be empty when AUTH_ENABLED is true")
		}
	}
	if cfg.SessionSecretKey == "" {
		errs = append(errs, "SESSION_SECRET_KEY must not be empty")
	}
	validatePositive("SESSION_MAX_AGE", cfg.SessionMaxAge, &errs)
	validatePositive("API_MAX_BODY_BYTES", cfg.APIMaxBodyBytes, &errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}

	return cfg, nil
}

// --- helpers ---

func envStr(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid integer %q", key, v))
		return defaultVal
	}
	return n
}

func envBool(key string, defaultVal bool, errs *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid boolean %q", key, v))
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: invalid duration %q", key, v))
		return defaultVal
	}
	return d
}

func validatePort(name string, value int, errs *[]string) {
	if value < 1 || value > 65535 {
		*errs = append(*errs, fmt.Sprintf("%s: port must be 1-65535, got %d", name, value))
	}
}

func validatePositive(name string, value int, errs *[]string) {
	if value <= 0 {
		*errs = append(*errs, fmt.Sprintf("%s: must be positive, got %d", name, value))
	}
}

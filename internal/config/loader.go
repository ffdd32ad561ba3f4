package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort       int
	SQLitePath     string
	SessionSecret  string
	SessionTTL     time.Duration
	PasswordScheme string
	MaxAdvanceDays int
	SweepSchedule  string
	// CancelledRetention is how long cancelled bookings are kept. Zero keeps them forever.
	CancelledRetention time.Duration
	AllowedOrigins     []string
	SeedDefaults       bool
	LogLevel           string
}

// DefaultEnvFile is read when BOOKING_ENV_FILE is unset.
const DefaultEnvFile = ".env"

// Load parses configuration values from the process environment after
// merging an optional env file. Variables already set in the environment take
// precedence over the file. Missing and invalid keys are reported together.
func Load() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("BOOKING_ENV_FILE"))
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	cfg := Config{
		HTTPPort:       8080,
		SQLitePath:     "booking.db",
		SessionTTL:     30 * 24 * time.Hour,
		PasswordScheme: "plain",
		MaxAdvanceDays: 180,
		SweepSchedule:  "@every 5m",
		SeedDefaults:   true,
		LogLevel:       "info",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := env("BOOKING_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if path := env("BOOKING_SQLITE_PATH"); path != "" {
		cfg.SQLitePath = path
	}

	if secret := env("BOOKING_SESSION_SECRET"); secret == "" {
		missing = append(missing, "BOOKING_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := env("BOOKING_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if scheme := strings.ToLower(env("BOOKING_PASSWORD_SCHEME")); scheme != "" {
		switch scheme {
		case "plain", "argon2id":
			cfg.PasswordScheme = scheme
		default:
			invalid = append(invalid, "BOOKING_PASSWORD_SCHEME")
		}
	}

	if daysValue := env("BOOKING_MAX_ADVANCE_DAYS"); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "BOOKING_MAX_ADVANCE_DAYS")
		} else {
			cfg.MaxAdvanceDays = days
		}
	}

	if schedule := env("BOOKING_SWEEP_SCHEDULE"); schedule != "" {
		cfg.SweepSchedule = schedule
	}

	if retentionValue := env("BOOKING_CANCELLED_RETENTION"); retentionValue != "" {
		retention, err := time.ParseDuration(retentionValue)
		if err != nil || retention < 0 {
			invalid = append(invalid, "BOOKING_CANCELLED_RETENTION")
		} else {
			cfg.CancelledRetention = retention
		}
	}

	if origins := env("BOOKING_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if seedValue := env("BOOKING_SEED_DEFAULTS"); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "BOOKING_SEED_DEFAULTS")
		} else {
			cfg.SeedDefaults = seed
		}
	}

	if level := strings.ToLower(env("BOOKING_LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "BOOKING_LOG_LEVEL")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

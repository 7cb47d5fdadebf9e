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

// Server captures HTTP server and draw engine configuration.
type Server struct {
	Addr           string
	Timezone       string
	Location       *time.Location
	Layout         string
	LayoutFile     string
	SessionIdleTTL time.Duration
	SweepInterval  time.Duration
	MaxUploadBytes int64
	MaxDrawCount   int
	LogLevel       string
	LogDev         bool
}

const (
	DefaultAddr           = ":8080"
	DefaultTimezone       = "Asia/Taipei"
	DefaultLayout         = "legacy"
	DefaultSessionIdleTTL = 12 * time.Hour
	DefaultSweepInterval  = 10 * time.Minute
	DefaultMaxUploadBytes = 5 << 20
	DefaultMaxDrawCount   = 10
	DefaultLogLevel       = "info"
)

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Missing files are ignored; variables already set
// win over file values.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Invalid values fall back to their defaults; each fallback is reported in the
// returned warnings so the caller can log them once a logger exists.
func FromEnv() (Server, []string) {
	var warnings []string
	warn := func(key, value string, fallback any) {
		warnings = append(warnings, fmt.Sprintf("invalid %s=%q, using %v", key, value, fallback))
	}

	cfg := Server{
		Addr:           stringEnv("LOTTERY_ADDR", DefaultAddr),
		Timezone:       stringEnv("LOTTERY_TIMEZONE", DefaultTimezone),
		Layout:         stringEnv("LOTTERY_LAYOUT", DefaultLayout),
		LayoutFile:     strings.TrimSpace(os.Getenv("LOTTERY_LAYOUT_FILE")),
		SessionIdleTTL: DefaultSessionIdleTTL,
		SweepInterval:  DefaultSweepInterval,
		MaxUploadBytes: DefaultMaxUploadBytes,
		MaxDrawCount:   DefaultMaxDrawCount,
		LogLevel:       stringEnv("LOG_LEVEL", DefaultLogLevel),
		LogDev:         os.Getenv("LOG_DEV") == "true",
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		warn("LOTTERY_TIMEZONE", cfg.Timezone, DefaultTimezone)
		cfg.Timezone = DefaultTimezone
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}
	cfg.Location = loc

	if v := os.Getenv("LOTTERY_SESSION_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionIdleTTL = d
		} else {
			warn("LOTTERY_SESSION_IDLE_TTL", v, DefaultSessionIdleTTL)
		}
	}
	if v := os.Getenv("LOTTERY_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		} else {
			warn("LOTTERY_SWEEP_INTERVAL", v, DefaultSweepInterval)
		}
	}
	if v := os.Getenv("LOTTERY_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		} else {
			warn("LOTTERY_MAX_UPLOAD_BYTES", v, DefaultMaxUploadBytes)
		}
	}
	if v := os.Getenv("LOTTERY_MAX_DRAW_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxDrawCount = n
		} else {
			warn("LOTTERY_MAX_DRAW_COUNT", v, DefaultMaxDrawCount)
		}
	}

	return cfg, warnings
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Package config reads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings. Command-line flags override it.
type Config struct {
	DBPath      string
	Addr        string
	AdminUser   string
	AdminTenant string
	LogPath     string
	LogLevel    slog.Level
	TokenTTL    time.Duration

	// RateLimit is a ulule/limiter rate such as "30-M" applied per user to
	// structure changes and zone deletion. Empty disables limiting.
	RateLimit string
}

// Load reads an optional .env file from the working directory and then the
// REGALI_* environment variables. Variables already set in the environment
// win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	cfg := &Config{
		DBPath:      getEnv("REGALI_DB", "regali.sqlite3"),
		Addr:        getEnv("REGALI_ADDR", ":8080"),
		AdminUser:   getEnv("REGALI_ADMIN_USER", "Admin"),
		AdminTenant: getEnv("REGALI_ADMIN_TENANT", "default"),
		LogPath:     getEnv("REGALI_LOG", ""),
		RateLimit:   getEnv("REGALI_RATE_LIMIT", "30-M"),
	}

	level, err := ParseLevel(getEnv("REGALI_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.TokenTTL, err = getDurationEnv("REGALI_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	// Bare numbers are seconds.
	secs, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, v)
	}
	return time.Duration(secs) * time.Second, nil
}

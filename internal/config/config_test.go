package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"REGALI_DB", "REGALI_ADDR", "REGALI_ADMIN_USER", "REGALI_ADMIN_TENANT",
		"REGALI_LOG", "REGALI_LOG_LEVEL", "REGALI_TOKEN_TTL", "REGALI_RATE_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "regali.sqlite3" || cfg.Addr != ":8080" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.TokenTTL)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set, so drop the
	// empty ones clearEnv registered for cleanup.
	os.Unsetenv("REGALI_ADDR")
	os.Unsetenv("REGALI_LOG_LEVEL")
	os.Unsetenv("REGALI_TOKEN_TTL")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "REGALI_ADDR=127.0.0.1:9000\nREGALI_LOG_LEVEL=debug\nREGALI_TOKEN_TTL=90\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("expected address from file, got %q", cfg.Addr)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
	if cfg.TokenTTL != 90*time.Second {
		t.Errorf("expected 90s token ttl, got %v", cfg.TokenTTL)
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("REGALI_LOG_LEVEL", "loud")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for invalid log level")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"NewsAggregator/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{configPathEnv, databaseDSNEnv, logLevelEnv} {
		t.Setenv(name, "")
	}
	for _, name := range providerKeyEnvs {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Ingest.Workers != 4 || cfg.Ingest.QueueSize != 64 {
		t.Fatalf("unexpected worker defaults: %+v", cfg.Ingest)
	}
	if cfg.Ingest.RetryDelay.Std() != 5*time.Minute {
		t.Fatalf("retry delay = %v, want 5m", cfg.Ingest.RetryDelay.Std())
	}
	if cfg.Ingest.MaxAttempts != 5 {
		t.Fatalf("max attempts = %d, want 5", cfg.Ingest.MaxAttempts)
	}
	if cfg.Scheduler.Interval.Std() != 6*time.Hour {
		t.Fatalf("scheduler interval = %v, want 6h", cfg.Scheduler.Interval.Std())
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Sources) != 3 {
		t.Fatalf("expected 3 seed sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].SourceType != domain.SourceTypeNewsAPI {
		t.Fatalf("unexpected first seed source: %+v", cfg.Sources[0])
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(databaseDSNEnv, "postgres://env-host/news")
	t.Setenv(logLevelEnv, "debug")
	t.Setenv("NEWS_API_KEY", "env-news-key")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env-host/news" {
		t.Fatalf("dsn override ignored: %q", cfg.Database.DSN)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level override ignored: %q", cfg.Logging.Level)
	}
	if cfg.Providers.Keys[domain.SourceTypeNewsAPI] != "env-news-key" {
		t.Fatalf("provider key override ignored: %+v", cfg.Providers.Keys)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	raw := `
logging:
  level: warn
ingest:
  workers: 8
  retryDelay: 90s
scheduler:
  interval: 1h
providers:
  keys:
    guardian: file-guardian-key
sources:
  - name: Custom Wire
    slug: custom-wire
    sourceType: open_news
    baseUrl: https://wire.example/api
    active: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Logging.Level != "warn" {
		t.Fatalf("file log level ignored: %q", cfg.Logging.Level)
	}
	if cfg.Ingest.Workers != 8 {
		t.Fatalf("file workers ignored: %d", cfg.Ingest.Workers)
	}
	if cfg.Ingest.RetryDelay.Std() != 90*time.Second {
		t.Fatalf("file retry delay ignored: %v", cfg.Ingest.RetryDelay.Std())
	}
	if cfg.Scheduler.Interval.Std() != time.Hour {
		t.Fatalf("file interval ignored: %v", cfg.Scheduler.Interval.Std())
	}
	// Untouched settings keep their defaults.
	if cfg.Ingest.MaxAttempts != 5 {
		t.Fatalf("default max attempts lost: %d", cfg.Ingest.MaxAttempts)
	}
	if cfg.Providers.Keys[domain.SourceTypeGuardian] != "file-guardian-key" {
		t.Fatalf("file provider key ignored: %+v", cfg.Providers.Keys)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Slug != "custom-wire" {
		t.Fatalf("file sources ignored: %+v", cfg.Sources)
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	clearEnv(t)

	raw := "database:\n  dsn: postgres://file-host/news\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env-host/news")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env-host/news" {
		t.Fatalf("env must win over file: %q", cfg.Database.DSN)
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := loadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Scan.LargeFileMin != defaultLargeFileMin || cfg.Scan.LargeFileCount != defaultLargeFileCount {
		t.Errorf("scan defaults = %+v", cfg.Scan)
	}
	if cfg.Overview.Concurrency != defaultOverviewSlots {
		t.Errorf("overview.concurrency = %d", cfg.Overview.Concurrency)
	}
	if cfg.Delete.Timeout != defaultTrashTimeout || cfg.Open.Timeout != defaultOpenTimeout {
		t.Errorf("timeouts = %v, %v", cfg.Delete.Timeout, cfg.Open.Timeout)
	}
	if cfg.Open.MaxBatch != defaultMaxBatchOpen || cfg.Cache.TTL != diskCacheTTL {
		t.Errorf("open.max_batch = %d, cache.ttl = %v", cfg.Open.MaxBatch, cfg.Cache.TTL)
	}
	if cfg.Cache.Dir == "" {
		t.Error("cache.dir is empty")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MO_ANALYZE_SCAN_WORKERS", "16")

	file := filepath.Join(t.TempDir(), "config.yaml")
	content := "overview:\n  concurrency: 5\ndelete:\n  timeout: 5s\nlog:\n  level: debug\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(viper.New(), file)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Overview.Concurrency != 5 || cfg.Delete.Timeout != 5*time.Second || cfg.Log.Level != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Scan.Workers != 16 {
		t.Errorf("scan.workers = %d, want 16 from the environment", cfg.Scan.Workers)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("an explicit config file that does not exist should fail")
	}
}

func TestConfigNormalize(t *testing.T) {
	var cfg Config
	cfg.Scan.Workers = -2
	cfg.normalize()
	if cfg.Scan.Workers != 0 || cfg.Overview.Concurrency != defaultOverviewSlots || cfg.Open.MaxBatch != defaultMaxBatchOpen {
		t.Errorf("normalize() = %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		debug bool
		want  zerolog.Level
	}{
		{"warn", false, zerolog.WarnLevel},
		{"ERROR", false, zerolog.ErrorLevel},
		{"bogus", false, zerolog.InfoLevel},
		{"", false, zerolog.InfoLevel},
		{"error", true, zerolog.DebugLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in, tt.debug); got != tt.want {
			t.Errorf("parseLevel(%q, %v) = %v, want %v", tt.in, tt.debug, got, tt.want)
		}
	}
}

func TestNewLoggerWritesToCacheDir(t *testing.T) {
	dir := t.TempDir()
	log, closer, err := newLogger(dir, "info", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.Info().Str("path", "/x").Msg("hello")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}

func TestResolveTarget(t *testing.T) {
	t.Setenv("MO_ANALYZE_PATH", "")
	if got, err := resolveTarget(nil); err != nil || got != "" {
		t.Errorf("resolveTarget(nil) = %q, %v; want overview", got, err)
	}

	dir := t.TempDir()
	t.Setenv("MO_ANALYZE_PATH", dir)
	if got, _ := resolveTarget(nil); got != dir {
		t.Errorf("env target = %q, want %q", got, dir)
	}
	other := t.TempDir()
	if got, _ := resolveTarget([]string{other}); got != other {
		t.Errorf("argument should win over env: got %q", got)
	}
}

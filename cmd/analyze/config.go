package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Cache struct {
		Dir string        `mapstructure:"dir"`
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"cache"`
	Scan struct {
		Workers        int   `mapstructure:"workers"`
		LargeFileMin   int64 `mapstructure:"large_file_min"`
		LargeFileCount int   `mapstructure:"large_file_count"`
	} `mapstructure:"scan"`
	Overview struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"overview"`
	Delete struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"delete"`
	Open struct {
		Timeout  time.Duration `mapstructure:"timeout"`
		MaxBatch int           `mapstructure:"max_batch"`
	} `mapstructure:"open"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "mole")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "mole")
	}
	return filepath.Join(home, ".cache", "mole")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("cache.ttl", diskCacheTTL)
	v.SetDefault("scan.workers", 0)
	v.SetDefault("scan.large_file_min", defaultLargeFileMin)
	v.SetDefault("scan.large_file_count", defaultLargeFileCount)
	v.SetDefault("overview.concurrency", defaultOverviewSlots)
	v.SetDefault("delete.timeout", defaultTrashTimeout)
	v.SetDefault("open.timeout", defaultOpenTimeout)
	v.SetDefault("open.max_batch", defaultMaxBatchOpen)
	v.SetDefault("log.level", "info")
}

// loadConfig reads config.yaml (explicit file, ~/.config/mole, or the working
// directory) and MO_ANALYZE_* environment overrides. A missing file is fine.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("MO_ANALYZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/mole")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = diskCacheTTL
	}
	if c.Scan.Workers < 0 {
		c.Scan.Workers = 0
	}
	if c.Scan.LargeFileMin < 0 {
		c.Scan.LargeFileMin = 0
	}
	if c.Scan.LargeFileCount <= 0 {
		c.Scan.LargeFileCount = defaultLargeFileCount
	}
	if c.Overview.Concurrency <= 0 {
		c.Overview.Concurrency = defaultOverviewSlots
	}
	if c.Delete.Timeout <= 0 {
		c.Delete.Timeout = defaultTrashTimeout
	}
	if c.Open.Timeout <= 0 {
		c.Open.Timeout = defaultOpenTimeout
	}
	if c.Open.MaxBatch <= 0 {
		c.Open.MaxBatch = defaultMaxBatchOpen
	}
}

func (c *Config) scanOptions() scanOptions {
	return scanOptions{
		Workers:        c.Scan.Workers,
		LargeFileMin:   c.Scan.LargeFileMin,
		LargeFileCount: c.Scan.LargeFileCount,
	}
}

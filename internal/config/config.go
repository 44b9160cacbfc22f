package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fxtrend/internal/window"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all configuration for fxtrend.
type Config struct {
	// Open Exchange Rates access
	OpenExchangeAppID   string `mapstructure:"open_exchange_app_id"`
	OpenExchangeBaseURL string `mapstructure:"open_exchange_base_url"`

	// Historical rate cache
	CacheBackend string `mapstructure:"cache_backend"`
	CachePath    string `mapstructure:"cache_path"`
	RedisAddr    string `mapstructure:"redis_addr"`
	RedisKey     string `mapstructure:"redis_key"`

	HistoryPath string `mapstructure:"history_path"`
	WindowDays  int    `mapstructure:"window_days"`

	// HTTP behavior
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RetryCount        int           `mapstructure:"retry_count"`

	LogLevel        string `mapstructure:"log_level"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

var keys = []string{
	"open_exchange_app_id",
	"open_exchange_base_url",
	"cache_backend",
	"cache_path",
	"redis_addr",
	"redis_key",
	"history_path",
	"window_days",
	"requests_per_second",
	"request_timeout",
	"retry_count",
	"log_level",
	"metrics_textfile",
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over file values.
//
// When configFile is empty, config.yaml is looked up in the working
// directory and in $HOME/.fxtrend, and a missing file is not an error.
//
// Expected environment variables:
//   - OPEN_EXCHANGE_APP_ID (required)
//   - OPEN_EXCHANGE_BASE_URL (optional, defaults to production)
//   - CACHE_BACKEND: file, redis or memory (default file)
//   - CACHE_PATH, HISTORY_PATH (default under $HOME/.fxtrend)
//   - REDIS_ADDR, REDIS_KEY
//   - WINDOW_DAYS (default 7)
//   - REQUESTS_PER_SECOND, REQUEST_TIMEOUT, RETRY_COUNT
//   - LOG_LEVEL (debug, info, warn, error)
//   - METRICS_TEXTFILE (optional path for a Prometheus textfile dump)
func Load(configFile string) (*Config, error) {
	return load(viper.New(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	dataDir := defaultDataDir()

	v.SetDefault("open_exchange_base_url", "https://openexchangerates.org/api")
	v.SetDefault("cache_backend", BackendFile)
	v.SetDefault("cache_path", filepath.Join(dataDir, "historical-rates.json"))
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_key", "fxtrend:historical")
	v.SetDefault("history_path", filepath.Join(dataDir, "history.json"))
	v.SetDefault("window_days", 7)
	v.SetDefault("requests_per_second", 5)
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("retry_count", 3)
	v.SetDefault("log_level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fxtrend")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.OpenExchangeAppID == "" {
		return errors.New("missing required configuration: OPEN_EXCHANGE_APP_ID")
	}

	c.CacheBackend = strings.ToLower(c.CacheBackend)
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendMemory}, c.CacheBackend) {
		return fmt.Errorf("invalid cache_backend %q: want file, redis or memory", c.CacheBackend)
	}

	if c.WindowDays < 0 || c.WindowDays > window.MaxDays {
		return fmt.Errorf("invalid window_days %d: must be between 0 and %d", c.WindowDays, window.MaxDays)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("invalid requests_per_second %v: must not be negative", c.RequestsPerSecond)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("invalid retry_count %d: must not be negative", c.RetryCount)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fxtrend"
	}
	return filepath.Join(home, ".fxtrend")
}

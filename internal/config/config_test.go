package config

import (
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"fxtrend/internal/window"
)

// clearEnv blanks every config variable for the duration of the test.
// Viper treats empty environment values as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(strings.ToUpper(key), "")
	}
}

func newViper(t *testing.T, files map[string]string) *viper.Viper {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to seed %s: %v", name, err)
		}
	}
	v := viper.New()
	v.SetFs(fsys)
	return v
}

func TestLoad_Success(t *testing.T) {
	clearEnv(t)
	envVars := map[string]string{
		"OPEN_EXCHANGE_APP_ID":   "test_app_id",
		"OPEN_EXCHANGE_BASE_URL": "https://test.openexchangerates.org/api",
		"CACHE_BACKEND":          "Redis",
		"REDIS_ADDR":             "redis:6379",
		"REDIS_KEY":              "test:rates",
		"WINDOW_DAYS":            "30",
		"REQUESTS_PER_SECOND":    "2.5",
		"REQUEST_TIMEOUT":        "3s",
		"RETRY_COUNT":            "0",
		"LOG_LEVEL":              "debug",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := load(newViper(t, nil), "")
	if err != nil {
		t.Fatalf("load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"OpenExchangeAppID", cfg.OpenExchangeAppID, "test_app_id"},
		{"OpenExchangeBaseURL", cfg.OpenExchangeBaseURL, "https://test.openexchangerates.org/api"},
		{"CacheBackend", cfg.CacheBackend, BackendRedis},
		{"RedisAddr", cfg.RedisAddr, "redis:6379"},
		{"RedisKey", cfg.RedisKey, "test:rates"},
		{"WindowDays", cfg.WindowDays, 30},
		{"RequestsPerSecond", cfg.RequestsPerSecond, 2.5},
		{"RequestTimeout", cfg.RequestTimeout, 3 * time.Second},
		{"RetryCount", cfg.RetryCount, 0},
		{"LogLevel", cfg.LogLevel, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPEN_EXCHANGE_APP_ID", "test_app_id")

	cfg, err := load(newViper(t, nil), "")
	if err != nil {
		t.Fatalf("load() returned unexpected error: %v", err)
	}

	if cfg.OpenExchangeBaseURL != "https://openexchangerates.org/api" {
		t.Errorf("OpenExchangeBaseURL = %q, want production default", cfg.OpenExchangeBaseURL)
	}
	if cfg.CacheBackend != BackendFile {
		t.Errorf("CacheBackend = %q, want %q", cfg.CacheBackend, BackendFile)
	}
	if filepath.Base(cfg.CachePath) != "historical-rates.json" {
		t.Errorf("CachePath = %q, want it to end in historical-rates.json", cfg.CachePath)
	}
	if filepath.Base(cfg.HistoryPath) != "history.json" {
		t.Errorf("HistoryPath = %q, want it to end in history.json", cfg.HistoryPath)
	}
	if cfg.WindowDays != 7 {
		t.Errorf("WindowDays = %d, want 7", cfg.WindowDays)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.RetryCount != 3 {
		t.Errorf("RetryCount = %d, want 3", cfg.RetryCount)
	}
	if cfg.MetricsTextfile != "" {
		t.Errorf("MetricsTextfile = %q, want empty", cfg.MetricsTextfile)
	}

	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, %v; want INFO", level, err)
	}
}

func TestLoad_MissingAppID(t *testing.T) {
	clearEnv(t)

	_, err := load(newViper(t, nil), "")
	if err == nil {
		t.Fatal("load() expected error for missing app id, got nil")
	}
	if !strings.Contains(err.Error(), "OPEN_EXCHANGE_APP_ID") {
		t.Errorf("load() error = %q, want it to name OPEN_EXCHANGE_APP_ID", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	v := newViper(t, map[string]string{
		"/etc/fxtrend/config.yaml": `
open_exchange_app_id: file_app_id
cache_backend: memory
window_days: 14
log_level: warn
`,
	})

	cfg, err := load(v, "/etc/fxtrend/config.yaml")
	if err != nil {
		t.Fatalf("load() returned unexpected error: %v", err)
	}

	if cfg.OpenExchangeAppID != "file_app_id" {
		t.Errorf("OpenExchangeAppID = %q, want file_app_id", cfg.OpenExchangeAppID)
	}
	if cfg.CacheBackend != BackendMemory {
		t.Errorf("CacheBackend = %q, want memory", cfg.CacheBackend)
	}
	if cfg.WindowDays != 14 {
		t.Errorf("WindowDays = %d, want 14", cfg.WindowDays)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("WINDOW_DAYS", "3")
	v := newViper(t, map[string]string{
		"config.yaml": "open_exchange_app_id: file_app_id\nwindow_days: 14\n",
	})

	cfg, err := load(v, "config.yaml")
	if err != nil {
		t.Fatalf("load() returned unexpected error: %v", err)
	}
	if cfg.WindowDays != 3 {
		t.Errorf("WindowDays = %d, want environment value 3", cfg.WindowDays)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPEN_EXCHANGE_APP_ID", "test_app_id")

	if _, err := load(newViper(t, nil), "missing.yaml"); err == nil {
		t.Error("load() expected error for a missing explicit config file, got nil")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			OpenExchangeAppID: "id",
			CacheBackend:      BackendFile,
			WindowDays:        7,
			LogLevel:          "info",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown backend", func(c *Config) { c.CacheBackend = "s3" }, true},
		{"negative window", func(c *Config) { c.WindowDays = -1 }, true},
		{"zero window", func(c *Config) { c.WindowDays = 0 }, false},
		{"largest window", func(c *Config) { c.WindowDays = window.MaxDays }, false},
		{"window too large", func(c *Config) { c.WindowDays = window.MaxDays + 1 }, true},
		{"overflowing window", func(c *Config) { c.WindowDays = math.MaxInt }, true},
		{"negative rate limit", func(c *Config) { c.RequestsPerSecond = -1 }, true},
		{"negative retries", func(c *Config) { c.RetryCount = -2 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

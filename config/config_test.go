package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

var envKeys = []string{
	"PLATEWISE_SERVER_PORT",
	"PLATEWISE_SERVER_ENVIRONMENT",
	"PLATEWISE_SERVER_ALLOWED_ORIGINS",
	"PLATEWISE_USDA_API_KEY",
	"PLATEWISE_USDA_BASE_URL",
	"PLATEWISE_USDA_TIMEOUT",
	"PLATEWISE_USDA_PAGE_SIZE",
	"PLATEWISE_USDA_MAX_RETRIES",
	"PLATEWISE_USDA_CACHE_TTL",
	"PLATEWISE_VISION_API_KEY",
	"PLATEWISE_VISION_MODEL",
	"PLATEWISE_VISION_MAX_TOKENS",
	"PLATEWISE_RATELIMIT_PER_IP",
	"PLATEWISE_RATELIMIT_USDA",
	"PLATEWISE_LOG_LEVEL",
	"PLATEWISE_LOG_FORMAT",
}

// cleanEnv blanks every config variable for the duration of the test and runs
// it from an empty directory so no config.yaml or .env is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad(t *testing.T) {
	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("PLATEWISE_USDA_API_KEY", "test-key")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if got := strings.Join(cfg.Server.AllowedOrigins, ","); got != "chrome-extension://*,http://localhost:*" {
			t.Errorf("Server.AllowedOrigins = %s, want chrome-extension://*,http://localhost:*", got)
		}
		if cfg.USDA.BaseURL != "https://api.nal.usda.gov/fdc" {
			t.Errorf("USDA.BaseURL = %s, want https://api.nal.usda.gov/fdc", cfg.USDA.BaseURL)
		}
		if cfg.USDA.Timeout != 8*time.Second {
			t.Errorf("USDA.Timeout = %v, want 8s", cfg.USDA.Timeout)
		}
		if cfg.USDA.PageSize != 25 {
			t.Errorf("USDA.PageSize = %d, want 25", cfg.USDA.PageSize)
		}
		if cfg.USDA.MaxRetries != 2 {
			t.Errorf("USDA.MaxRetries = %d, want 2", cfg.USDA.MaxRetries)
		}
		if cfg.USDA.CacheTTL != 24*time.Hour {
			t.Errorf("USDA.CacheTTL = %v, want 24h", cfg.USDA.CacheTTL)
		}
		if cfg.Vision.APIKey != "" {
			t.Errorf("Vision.APIKey = %s, want empty", cfg.Vision.APIKey)
		}
		if cfg.Vision.Model != "claude-sonnet-4-5-20250929" {
			t.Errorf("Vision.Model = %s, want claude-sonnet-4-5-20250929", cfg.Vision.Model)
		}
		if cfg.Vision.MaxTokens != 600 {
			t.Errorf("Vision.MaxTokens = %d, want 600", cfg.Vision.MaxTokens)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.USDA != 1000 {
			t.Errorf("RateLimit.USDA = %d, want 1000", cfg.RateLimit.USDA)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v, want info/json", cfg.Log)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("PLATEWISE_SERVER_PORT", "9090")
		t.Setenv("PLATEWISE_SERVER_ENVIRONMENT", "production")
		t.Setenv("PLATEWISE_USDA_API_KEY", "custom-api-key")
		t.Setenv("PLATEWISE_USDA_BASE_URL", "https://custom.api.com")
		t.Setenv("PLATEWISE_USDA_TIMEOUT", "3s")
		t.Setenv("PLATEWISE_USDA_PAGE_SIZE", "50")
		t.Setenv("PLATEWISE_USDA_CACHE_TTL", "0s")
		t.Setenv("PLATEWISE_VISION_API_KEY", "vision-key")
		t.Setenv("PLATEWISE_RATELIMIT_PER_IP", "200")
		t.Setenv("PLATEWISE_RATELIMIT_USDA", "2000")
		t.Setenv("PLATEWISE_LOG_FORMAT", "console")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.USDA.APIKey != "custom-api-key" {
			t.Errorf("USDA.APIKey = %s, want custom-api-key", cfg.USDA.APIKey)
		}
		if cfg.USDA.BaseURL != "https://custom.api.com" {
			t.Errorf("USDA.BaseURL = %s, want https://custom.api.com", cfg.USDA.BaseURL)
		}
		if cfg.USDA.Timeout != 3*time.Second {
			t.Errorf("USDA.Timeout = %v, want 3s", cfg.USDA.Timeout)
		}
		if cfg.USDA.PageSize != 50 {
			t.Errorf("USDA.PageSize = %d, want 50", cfg.USDA.PageSize)
		}
		if cfg.USDA.CacheTTL != 0 {
			t.Errorf("USDA.CacheTTL = %v, want 0", cfg.USDA.CacheTTL)
		}
		if cfg.Vision.APIKey != "vision-key" {
			t.Errorf("Vision.APIKey = %s, want vision-key", cfg.Vision.APIKey)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.RateLimit.USDA != 2000 {
			t.Errorf("RateLimit.USDA = %d, want 2000", cfg.RateLimit.USDA)
		}
		if cfg.Log.Format != "console" {
			t.Errorf("Log.Format = %s, want console", cfg.Log.Format)
		}
	})

	t.Run("loads values from a .env file", func(t *testing.T) {
		cleanEnv(t)
		os.Unsetenv("PLATEWISE_USDA_API_KEY")
		t.Cleanup(func() { os.Unsetenv("PLATEWISE_USDA_API_KEY") })

		if err := os.WriteFile(".env", []byte("# local settings\nPLATEWISE_USDA_API_KEY=dotenv-key\n"), 0o644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.USDA.APIKey != "dotenv-key" {
			t.Errorf("USDA.APIKey = %s, want dotenv-key", cfg.USDA.APIKey)
		}
	})

	t.Run("reads config.yaml from the working directory", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("PLATEWISE_USDA_API_KEY", "test-key")

		yaml := "server:\n  port: \"7070\"\nusda:\n  page_size: 10\n"
		if err := os.WriteFile("config.yaml", []byte(yaml), 0o644); err != nil {
			t.Fatalf("Failed to create test config file: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if cfg.USDA.PageSize != 10 {
			t.Errorf("USDA.PageSize = %d, want 10", cfg.USDA.PageSize)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanEnv(t)

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing API key")
		}
		if !strings.Contains(err.Error(), "USDA API key is required") {
			t.Errorf("Load() error = %v, want 'USDA API key is required'", err)
		}
	})

	t.Run("fails validation for page size out of range", func(t *testing.T) {
		cleanEnv(t)
		t.Setenv("PLATEWISE_USDA_API_KEY", "test-key")
		t.Setenv("PLATEWISE_USDA_PAGE_SIZE", "500")

		if _, err := Load(); err == nil {
			t.Error("Load() error = nil, want error for page size 500")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			USDA: USDAConfig{
				APIKey:     "test-key",
				BaseURL:    "https://api.nal.usda.gov/fdc",
				Timeout:    8 * time.Second,
				PageSize:   25,
				MaxRetries: 2,
			},
			Log: LogConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"validates successfully with all required fields", func(*Config) {}, false},
		{"fails when API key is empty", func(c *Config) { c.USDA.APIKey = "" }, true},
		{"fails for zero page size", func(c *Config) { c.USDA.PageSize = 0 }, true},
		{"accepts max page size", func(c *Config) { c.USDA.PageSize = 200 }, false},
		{"fails for page size above max", func(c *Config) { c.USDA.PageSize = 201 }, true},
		{"fails for zero timeout", func(c *Config) { c.USDA.Timeout = 0 }, true},
		{"fails for negative retries", func(c *Config) { c.USDA.MaxRetries = -1 }, true},
		{"zero cache TTL disables the cache", func(c *Config) { c.USDA.CacheTTL = 0 }, false},
		{"fails for negative cache TTL", func(c *Config) { c.USDA.CacheTTL = -time.Second }, true},
		{"accepts console log format", func(c *Config) { c.Log.Format = "console" }, false},
		{"fails for unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"vision key is optional", func(c *Config) { c.Vision.APIKey = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { zap.ReplaceGlobals(zap.NewNop()) })

	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"bad level", LogConfig{Level: "loud", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("InitLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

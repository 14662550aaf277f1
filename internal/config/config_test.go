// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies defaults, YAML overlay, environment overrides, and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.CheckIntervalHours != 6 {
		t.Errorf("CheckIntervalHours = %f, want 6", cfg.CheckIntervalHours)
	}
	if cfg.CheckInterval() != 6*time.Hour {
		t.Errorf("CheckInterval() = %v, want 6h", cfg.CheckInterval())
	}
	if cfg.CheckOnStart {
		t.Error("CheckOnStart = true, want false")
	}
	if cfg.MaxConcurrentChecks != 5 {
		t.Errorf("MaxConcurrentChecks = %d, want 5", cfg.MaxConcurrentChecks)
	}
	if cfg.FetchTimeout != 20*time.Second {
		t.Errorf("FetchTimeout = %v, want 20s", cfg.FetchTimeout)
	}
	if cfg.SimilarityThreshold != 0.75 {
		t.Errorf("SimilarityThreshold = %f, want 0.75", cfg.SimilarityThreshold)
	}
	if cfg.SavingsThreshold() != 0.10 {
		t.Errorf("SavingsThreshold() = %f, want 0.10", cfg.SavingsThreshold())
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.EmbedTimeout != 30*time.Second {
		t.Errorf("EmbedTimeout = %v, want 30s", cfg.EmbedTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.SMTPHost != "smtp.gmail.com" || cfg.SMTPPort != 587 {
		t.Errorf("SMTP = %s:%d, want smtp.gmail.com:587", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.SendTimeout != 15*time.Second {
		t.Errorf("SendTimeout = %v, want 15s", cfg.SendTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should have a default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	os.Setenv("PRICEWATCH_DB", "/tmp/pw.db")
	os.Setenv("CHECK_INTERVAL_HOURS", "0.5")
	os.Setenv("CHECK_ON_START", "true")
	os.Setenv("MAX_CONCURRENT_CHECKS", "8")
	os.Setenv("FETCH_TIMEOUT", "5s")
	os.Setenv("SIMILARITY_THRESHOLD", "0.8")
	os.Setenv("SAVINGS_THRESHOLD_PERCENT", "25")
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("OPENAI_MAX_RETRIES", "5")
	os.Setenv("SMTP_HOST", "mail.example.com")
	os.Setenv("SMTP_PORT", "2525")
	os.Setenv("NOTIFICATION_EMAIL", "me@example.com")
	os.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DBPath != "/tmp/pw.db" {
		t.Errorf("DBPath = %s, want /tmp/pw.db", cfg.DBPath)
	}
	if cfg.CheckInterval() != 30*time.Minute {
		t.Errorf("CheckInterval() = %v, want 30m", cfg.CheckInterval())
	}
	if !cfg.CheckOnStart {
		t.Error("CheckOnStart = false, want true")
	}
	if cfg.MaxConcurrentChecks != 8 {
		t.Errorf("MaxConcurrentChecks = %d, want 8", cfg.MaxConcurrentChecks)
	}
	if cfg.FetchTimeout != 5*time.Second {
		t.Errorf("FetchTimeout = %v, want 5s", cfg.FetchTimeout)
	}
	if cfg.SimilarityThreshold != 0.8 {
		t.Errorf("SimilarityThreshold = %f, want 0.8", cfg.SimilarityThreshold)
	}
	if cfg.SavingsThreshold() != 0.25 {
		t.Errorf("SavingsThreshold() = %f, want 0.25", cfg.SavingsThreshold())
	}
	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.SMTPHost != "mail.example.com" || cfg.SMTPPort != 2525 {
		t.Errorf("SMTP = %s:%d", cfg.SMTPHost, cfg.SMTPPort)
	}
	if cfg.NotificationEmail != "me@example.com" {
		t.Errorf("NotificationEmail = %s", cfg.NotificationEmail)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	os.Clearenv()
	path := filepath.Join(t.TempDir(), "pricewatch.yaml")
	yaml := `
checkIntervalHours: 12
maxConcurrentChecks: 3
fetchTimeout: 45s
similarityThreshold: 0.9
smtpHost: smtp.file.example
notificationEmail: file@example.com
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	os.Setenv("PRICEWATCH_CONFIG", path)
	os.Setenv("SMTP_HOST", "smtp.env.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.CheckIntervalHours != 12 {
		t.Errorf("CheckIntervalHours = %f, want 12 from file", cfg.CheckIntervalHours)
	}
	if cfg.MaxConcurrentChecks != 3 {
		t.Errorf("MaxConcurrentChecks = %d, want 3 from file", cfg.MaxConcurrentChecks)
	}
	if cfg.FetchTimeout != 45*time.Second {
		t.Errorf("FetchTimeout = %v, want 45s from file", cfg.FetchTimeout)
	}
	if cfg.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %f, want 0.9 from file", cfg.SimilarityThreshold)
	}
	if cfg.SMTPHost != "smtp.env.example" {
		t.Errorf("SMTPHost = %s, env should win over file", cfg.SMTPHost)
	}
	if cfg.NotificationEmail != "file@example.com" {
		t.Errorf("NotificationEmail = %s, want value from file", cfg.NotificationEmail)
	}
	if cfg.SavingsThresholdPercent != 10 {
		t.Errorf("SavingsThresholdPercent = %f, default should survive the file", cfg.SavingsThresholdPercent)
	}
}

func TestLoad_BadFile(t *testing.T) {
	os.Clearenv()
	os.Setenv("PRICEWATCH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load() should fail for a missing config file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	_ = os.WriteFile(path, []byte("checkIntervalHours: [nope"), 0o600)
	os.Setenv("PRICEWATCH_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("Load() should fail for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero interval", func(c *Config) { c.CheckIntervalHours = 0 }},
		{"no concurrency", func(c *Config) { c.MaxConcurrentChecks = 0 }},
		{"too much concurrency", func(c *Config) { c.MaxConcurrentChecks = 100 }},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"similarity above 1", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"similarity below 0", func(c *Config) { c.SimilarityThreshold = -0.1 }},
		{"savings 100", func(c *Config) { c.SavingsThresholdPercent = 100 }},
		{"too many retries", func(c *Config) { c.MaxRetries = 15 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"bad port", func(c *Config) { c.SMTPPort = 70000 }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
	}

	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults().Validate() error = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		defaultVal bool
		want       bool
	}{
		{"empty uses default true", "", true, true},
		{"empty uses default false", "", false, false},
		{"true", "true", false, true},
		{"1", "1", false, true},
		{"false", "false", true, false},
		{"0", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_BOOL", tt.value)
			}
			got := getEnvBool("TEST_BOOL", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

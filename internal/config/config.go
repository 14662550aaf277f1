// ABOUTME: Centralized configuration for the price tracker
// ABOUTME: Defaults, then an optional YAML file, then environment variables, then validation
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/pricewatch/internal/storage/sqlite"
)

// Config holds all configuration for the tracker
type Config struct {
	// Storage
	DBPath string `yaml:"dbPath"`

	// Monitor settings
	CheckIntervalHours  float64       `yaml:"checkIntervalHours"`
	CheckOnStart        bool          `yaml:"checkOnStart"`
	MaxConcurrentChecks int           `yaml:"maxConcurrentChecks"`
	FetchTimeout        time.Duration `yaml:"fetchTimeout"`
	UserAgent           string        `yaml:"userAgent"`

	// Similarity settings
	SimilarityThreshold     float64 `yaml:"similarityThreshold"`
	SavingsThresholdPercent float64 `yaml:"savingsThresholdPercent"`

	// OpenAI settings
	OpenAIKey      string        `yaml:"openaiKey"`
	OpenAIBaseURL  string        `yaml:"openaiBaseUrl"`
	EmbeddingModel string        `yaml:"embeddingModel"`
	EmbedTimeout   time.Duration `yaml:"embedTimeout"`
	MaxRetries     int           `yaml:"maxRetries"`
	RetryDelay     time.Duration `yaml:"retryDelay"`

	// SMTP settings
	SMTPHost          string        `yaml:"smtpHost"`
	SMTPPort          int           `yaml:"smtpPort"`
	SMTPUser          string        `yaml:"smtpUser"`
	SMTPPassword      string        `yaml:"smtpPassword"`
	FromEmail         string        `yaml:"fromEmail"`
	NotificationEmail string        `yaml:"notificationEmail"`
	SendTimeout       time.Duration `yaml:"sendTimeout"`

	LogLevel string `yaml:"logLevel"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		DBPath:                  sqlite.DefaultDBPath(),
		CheckIntervalHours:      6,
		MaxConcurrentChecks:     5,
		FetchTimeout:            20 * time.Second,
		SimilarityThreshold:     0.75,
		SavingsThresholdPercent: 10,
		EmbeddingModel:          "text-embedding-3-small",
		EmbedTimeout:            30 * time.Second,
		MaxRetries:              3,
		RetryDelay:              2 * time.Second,
		SMTPHost:                "smtp.gmail.com",
		SMTPPort:                587,
		SendTimeout:             15 * time.Second,
		LogLevel:                "info",
	}
}

// Load builds the configuration. PRICEWATCH_CONFIG may name a YAML file
// whose values sit between the defaults and the environment.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("PRICEWATCH_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.DBPath = getEnv("PRICEWATCH_DB", c.DBPath)
	c.CheckIntervalHours = getEnvFloat("CHECK_INTERVAL_HOURS", c.CheckIntervalHours)
	c.CheckOnStart = getEnvBool("CHECK_ON_START", c.CheckOnStart)
	c.MaxConcurrentChecks = getEnvInt("MAX_CONCURRENT_CHECKS", c.MaxConcurrentChecks)
	c.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", c.FetchTimeout)
	c.UserAgent = getEnv("FETCH_USER_AGENT", c.UserAgent)
	c.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", c.SimilarityThreshold)
	c.SavingsThresholdPercent = getEnvFloat("SAVINGS_THRESHOLD_PERCENT", c.SavingsThresholdPercent)
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.EmbeddingModel = getEnv("PRICEWATCH_EMBEDDING_MODEL", c.EmbeddingModel)
	c.EmbedTimeout = getEnvDuration("OPENAI_TIMEOUT", c.EmbedTimeout)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)
	c.SMTPHost = getEnv("SMTP_HOST", c.SMTPHost)
	c.SMTPPort = getEnvInt("SMTP_PORT", c.SMTPPort)
	c.SMTPUser = getEnv("SMTP_USER", c.SMTPUser)
	c.SMTPPassword = getEnv("SMTP_PASSWORD", c.SMTPPassword)
	c.FromEmail = getEnv("FROM_EMAIL", c.FromEmail)
	c.NotificationEmail = getEnv("NOTIFICATION_EMAIL", c.NotificationEmail)
	c.SendTimeout = getEnvDuration("SMTP_TIMEOUT", c.SendTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("PRICEWATCH_DB must not be empty")
	}
	if c.CheckIntervalHours <= 0 {
		return fmt.Errorf("CHECK_INTERVAL_HOURS must be positive, got %f", c.CheckIntervalHours)
	}
	if c.MaxConcurrentChecks < 1 || c.MaxConcurrentChecks > 50 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be 1-50, got %d", c.MaxConcurrentChecks)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout)
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be 0-1, got %f", c.SimilarityThreshold)
	}
	if c.SavingsThresholdPercent < 0 || c.SavingsThresholdPercent >= 100 {
		return fmt.Errorf("SAVINGS_THRESHOLD_PERCENT must be 0-100, got %f", c.SavingsThresholdPercent)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTP_PORT must be 1-65535, got %d", c.SMTPPort)
	}
	return nil
}

// CheckInterval is the scheduler period
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalHours * float64(time.Hour))
}

// SavingsThreshold is the minimum savings as a fraction
func (c *Config) SavingsThreshold() float64 {
	return c.SavingsThresholdPercent / 100
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

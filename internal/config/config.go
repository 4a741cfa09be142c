// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jarvish/compliance-engine/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Model holds generative-model endpoint settings.
	Model ModelConfig

	// Compliance holds scoring and pipeline policy settings.
	Compliance ComplianceConfig

	// Cache holds result-cache settings.
	Cache CacheConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
}

// ModelConfig contains generative-model endpoint settings.
type ModelConfig struct {
	// APIKey is the authentication key for the model provider.
	APIKey string

	// BaseURL is the base URL for the OpenAI-compatible API.
	BaseURL string

	// Model is the model name to use.
	Model string

	// Timeout bounds each semantic evaluation call.
	Timeout time.Duration

	// MaxTokens is the maximum tokens for a model response.
	MaxTokens int

	// MaxRetries is the number of retries on transient failures.
	MaxRetries int

	// MockMode enables mock responses for testing without API calls.
	MockMode bool
}

// ComplianceConfig contains scoring and pipeline policy settings.
type ComplianceConfig struct {
	// RiskThreshold is the risk score at and above which content is
	// non-compliant. The boundary fails: riskScore >= threshold is a
	// failing evaluation.
	RiskThreshold int

	// FixableCeiling is the risk score below which non-compliant
	// content is eligible for auto-fix. Critical violations are never
	// auto-fixable regardless of score.
	FixableCeiling int

	// MinConfidence discards semantic findings below this confidence
	// before they reach aggregation.
	MinConfidence float64

	// MaxContentLength is the hard input ceiling, independent of the
	// per-channel limits.
	MaxContentLength int
}

// CacheConfig contains result-cache settings.
type CacheConfig struct {
	// RedisAddr is the host:port of the Redis cache store.
	// Empty disables Redis and uses the in-memory store.
	RedisAddr string

	// RedisPassword authenticates against the Redis store.
	RedisPassword string

	// RedisDB selects the Redis logical database.
	RedisDB int

	// DefaultTTL is the cache lifetime when the caller does not
	// specify one.
	DefaultTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Model: ModelConfig{
			APIKey:     os.Getenv("MODEL_API_KEY"),
			BaseURL:    getEnvOrDefault("MODEL_BASE_URL", "https://api.openai.com/v1"),
			Model:      getEnvOrDefault("MODEL_NAME", "gpt-4o-mini"),
			Timeout:    getDurationOrDefault("MODEL_TIMEOUT", 8*time.Second),
			MaxTokens:  getIntOrDefault("MODEL_MAX_TOKENS", 800),
			MaxRetries: getIntOrDefault("MODEL_MAX_RETRIES", 1),
			MockMode:   getBoolOrDefault("MODEL_MOCK_MODE", false),
		},
		Compliance: ComplianceConfig{
			RiskThreshold:    getIntOrDefault("COMPLIANCE_RISK_THRESHOLD", 30),
			FixableCeiling:   getIntOrDefault("COMPLIANCE_FIXABLE_CEILING", 70),
			MinConfidence:    getFloatOrDefault("COMPLIANCE_MIN_CONFIDENCE", 0.5),
			MaxContentLength: getIntOrDefault("MAX_CONTENT_LENGTH", 4096),
		},
		Cache: CacheConfig{
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getIntOrDefault("REDIS_DB", 0),
			DefaultTTL:    getDurationOrDefault("CACHE_DEFAULT_TTL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Model.MockMode && c.Model.APIKey == "" {
		return fmt.Errorf("%w: MODEL_API_KEY is required when not in mock mode", domain.ErrInvalidConfig)
	}

	if c.Model.Timeout < time.Second {
		return fmt.Errorf("%w: MODEL_TIMEOUT must be at least 1 second", domain.ErrInvalidConfig)
	}

	if c.Compliance.RiskThreshold < 1 || c.Compliance.RiskThreshold > 100 {
		return fmt.Errorf("%w: COMPLIANCE_RISK_THRESHOLD must be between 1 and 100", domain.ErrInvalidConfig)
	}

	if c.Compliance.FixableCeiling < c.Compliance.RiskThreshold {
		return fmt.Errorf("%w: COMPLIANCE_FIXABLE_CEILING must not be below the risk threshold", domain.ErrInvalidConfig)
	}

	if c.Compliance.MinConfidence < 0 || c.Compliance.MinConfidence > 1 {
		return fmt.Errorf("%w: COMPLIANCE_MIN_CONFIDENCE must be between 0 and 1", domain.ErrInvalidConfig)
	}

	if c.Compliance.MaxContentLength < 100 {
		return fmt.Errorf("%w: MAX_CONTENT_LENGTH must be at least 100", domain.ErrInvalidConfig)
	}

	if c.Cache.DefaultTTL < time.Minute {
		return fmt.Errorf("%w: CACHE_DEFAULT_TTL must be at least 1 minute", domain.ErrInvalidConfig)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

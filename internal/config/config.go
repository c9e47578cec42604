// Package config resolves editor settings from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over it.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sohail300/pipeline/internal/logging"
	"github.com/sohail300/pipeline/pkg/submit"
)

// Environment variable names.
const (
	EnvValidatorURL  = "PIPELINE_VALIDATOR_URL"
	EnvAddr          = "PIPELINE_ADDR"
	EnvRedisAddr     = "PIPELINE_REDIS_ADDR"
	EnvRedisPassword = "PIPELINE_REDIS_PASSWORD"
	EnvRedisDB       = "PIPELINE_REDIS_DB"
	EnvLogLevel      = "PIPELINE_LOG_LEVEL"
	EnvNodeTypes     = "PIPELINE_NODE_TYPES"
	EnvSubmitTimeout = "PIPELINE_SUBMIT_TIMEOUT"
	EnvSingleFlight  = "PIPELINE_SINGLE_FLIGHT"
)

// Config holds the editor settings.
type Config struct {
	ValidatorURL  string
	Addr          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LogLevel      string
	// NodeTypes is an optional YAML catalog of extra node types.
	NodeTypes     string
	SubmitTimeout time.Duration
	SingleFlight  bool
}

// Load reads the configuration. envFiles default to ".env"; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{
		ValidatorURL:  getEnvWithDefault(EnvValidatorURL, submit.DefaultBaseURL),
		Addr:          getEnvWithDefault(EnvAddr, ":8080"),
		RedisAddr:     getEnvWithDefault(EnvRedisAddr, ""),
		RedisPassword: getEnvWithDefault(EnvRedisPassword, ""),
		RedisDB:       getEnvAsInt(EnvRedisDB, 0),
		LogLevel:      getEnvWithDefault(EnvLogLevel, "info"),
		NodeTypes:     getEnvWithDefault(EnvNodeTypes, ""),
		SubmitTimeout: getEnvAsDuration(EnvSubmitTimeout, 30*time.Second),
		SingleFlight:  getEnvAsBool(EnvSingleFlight, false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ValidatorURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", EnvValidatorURL, c.ValidatorURL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", EnvLogLevel, err)
	}
	if c.SubmitTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvSubmitTimeout)
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

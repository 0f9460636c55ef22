// Package config loads service configuration from YAML with environment
// overrides for deployment secrets.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// Empty databaseURL selects the in-memory store.
	DatabaseURL string `yaml:"databaseURL"`

	OpenAIAPIKey string `yaml:"openaiAPIKey"`
	OpenAIModel  string `yaml:"openaiModel"`

	// Reply generation is abandoned in favor of the fallback message
	// once this many seconds pass.
	AssistantTimeoutSeconds int `yaml:"assistantTimeoutSeconds"`

	// An admin account is seeded at startup when both are set.
	AdminUsername string `yaml:"adminUsername"`
	AdminPassword string `yaml:"adminPassword"`

	// Empty redisAddr disables rate limiting.
	RedisAddr              string   `yaml:"redisAddr"`
	RedisPassword          string   `yaml:"redisPassword"`
	MessageRateLimitPerMin int      `yaml:"messageRateLimitPerMin"`
	TrustedProxyCIDRs      []string `yaml:"trustedProxyCIDRs"`
}

// AssistantTimeout returns the delegate timeout as a duration.
func (c FileConfig) AssistantTimeout() time.Duration {
	if c.AssistantTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.AssistantTimeoutSeconds) * time.Second
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		cfg.AdminUsername = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	// A missing OpenAI key is not fatal: the server starts and the
	// delegate degrades to its fallback reply on every call.
	if cfg.RedisAddr != "" && cfg.MessageRateLimitPerMin <= 0 {
		return errors.New("config: messageRateLimitPerMin must be positive when redisAddr is set")
	}
	return nil
}

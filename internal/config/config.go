package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string          `yaml:"listen_addr"`
	Environment    string          `yaml:"environment"`
	FrontendOrigin string          `yaml:"frontend_origin"`
	CatalogPath    string          `yaml:"catalog_path"`
	AI             AIConfig        `yaml:"ai"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

type AIConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
}

type RateLimitConfig struct {
	WindowSeconds   int `yaml:"window_seconds"`
	MaxRequests     int `yaml:"max_requests"`
	AIWindowSeconds int `yaml:"ai_window_seconds"`
	AIMaxRequests   int `yaml:"ai_max_requests"`
}

func Load(path string) (Config, error) {
	// #nosec G304 -- path is operator-provided config path.
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	expanded := os.ExpandEnv(string(raw))
	expanded = strings.ReplaceAll(expanded, "\r\n", "\n")

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}

	if c.AI.Enabled && c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.enabled=true")
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2")
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens must not be negative")
	}

	if c.RateLimit.MaxRequests < 0 || c.RateLimit.AIMaxRequests < 0 {
		return fmt.Errorf("rate_limit maximums must not be negative")
	}

	return nil
}

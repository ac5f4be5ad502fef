package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort = 2333
	defaultEnv  = "development"
)

// Load reads and normalizes the YAML config file at path.
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configs the app cannot start with.
func (c *AppConfig) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("config: dsn is required")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("config: redis_url is required")
	}
	if len(c.AI.ChatModelCandidates) == 0 && len(c.AI.Providers) == 0 {
		return fmt.Errorf("config: at least one AI provider is required")
	}
	return nil
}

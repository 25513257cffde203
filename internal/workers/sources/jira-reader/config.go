package jirareader

import (
	"fmt"
	"time"

	"work-planner/internal/common/config"
)

type Config struct {
	URL        string
	Token      string
	MaxResults int
	Timeout    time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		MaxResults: 100,
		Timeout:    30 * time.Second,
	}
}

func FromAppConfig(c config.JiraConfig) *Config {
	cfg := DefaultConfig()
	cfg.URL = c.URL
	cfg.Token = c.Token
	if c.MaxResults > 0 {
		cfg.MaxResults = c.MaxResults
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

package slackreader

import (
	"fmt"
	"strings"
	"time"

	"work-planner/internal/common/config"
)

type Config struct {
	BaseURL      string
	Token        string
	Cookie       string
	WorkspaceURL string
	MaxMessages  int
	Timeout      time.Duration
	CacheTTL     time.Duration
	Users        map[string]string
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://slack.com/api",
		MaxMessages: 100,
		Timeout:     30 * time.Second,
		CacheTTL:    24 * time.Hour,
		Users:       map[string]string{},
	}
}

// FromAppConfig maps the slack section of the run configuration.
func FromAppConfig(c config.SlackConfig) *Config {
	cfg := DefaultConfig()
	if c.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}
	cfg.Token = c.Token
	cfg.Cookie = c.Cookie
	cfg.WorkspaceURL = strings.TrimRight(c.WorkspaceURL, "/")
	if c.MaxMessages > 0 {
		cfg.MaxMessages = c.MaxMessages
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	if c.CacheTTL > 0 {
		cfg.CacheTTL = config.GetDuration(c.CacheTTL)
	}
	for _, u := range c.Users {
		cfg.Users[u.ID] = u.DisplayName
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxMessages <= 0 || c.MaxMessages > 1000 {
		return fmt.Errorf("max_messages must be between 1 and 1000")
	}
	return nil
}

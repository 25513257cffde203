package emailreader

import (
	"fmt"
	"time"

	"work-planner/internal/common/config"
)

type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Mailbox     string
	MaxMessages int
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Port:        993,
		Mailbox:     "INBOX",
		MaxMessages: 50,
		Timeout:     30 * time.Second,
	}
}

func FromAppConfig(c config.IMAPConfig) *Config {
	cfg := DefaultConfig()
	cfg.Host = c.Host
	cfg.Username = c.Username
	cfg.Password = c.Password
	if c.Port > 0 {
		cfg.Port = c.Port
	}
	if c.Mailbox != "" {
		cfg.Mailbox = c.Mailbox
	}
	if c.MaxMessages > 0 {
		cfg.MaxMessages = c.MaxMessages
	}
	if c.Timeout > 0 {
		cfg.Timeout = config.GetDuration(c.Timeout)
	}
	return cfg
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("imap host is required")
	}
	if c.Username == "" {
		return fmt.Errorf("imap username is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("imap port must be between 1 and 65535")
	}
	if c.MaxMessages <= 0 {
		return fmt.Errorf("max_messages must be positive")
	}
	return nil
}

package emailsend

import (
	"fmt"
	"time"

	"work-planner/internal/common/config"
)

const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"

	SecurityTLS  = "tls"
	SecuritySSL  = "ssl"
	SecurityNone = "none"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Security string
	Timeout  time.Duration
}

func (c SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type Config struct {
	Provider    string
	From        string
	FromName    string
	SMTP        SMTPConfig
	Region      string
	MaxAttempts int
	RetryDelay  time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderSMTP,
		SMTP: SMTPConfig{
			Port:     587,
			Security: SecurityTLS,
			Timeout:  30 * time.Second,
		},
		MaxAttempts: 3,
		RetryDelay:  30 * time.Second,
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg.Email.Provider != "" {
		c.Provider = cfg.Email.Provider
	}
	c.From = cfg.Email.From
	if c.Provider == ProviderSES && cfg.AWS.SES.FromEmail != "" {
		c.From = cfg.AWS.SES.FromEmail
	}
	c.FromName = cfg.Email.FromName
	c.Region = cfg.AWS.Region

	smtpCfg := cfg.Email.SMTP
	c.SMTP.Host = smtpCfg.Host
	c.SMTP.Username = smtpCfg.Username
	c.SMTP.Password = smtpCfg.Password
	if smtpCfg.Port > 0 {
		c.SMTP.Port = smtpCfg.Port
	}
	if smtpCfg.Security != "" {
		c.SMTP.Security = smtpCfg.Security
	}
	if smtpCfg.Timeout > 0 {
		c.SMTP.Timeout = config.GetDuration(smtpCfg.Timeout)
	}
	if cfg.Email.Retry.MaxAttempts > 0 {
		c.MaxAttempts = cfg.Email.Retry.MaxAttempts
	}
	c.RetryDelay = config.GetDuration(cfg.Email.Retry.Delay)
	return c
}

func (c *Config) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("retry max_attempts must be positive")
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative")
	}
	if !IsValidEmail(c.From) {
		return fmt.Errorf("invalid from address %q", c.From)
	}
	switch c.Provider {
	case ProviderSMTP:
		if c.SMTP.Host == "" {
			return fmt.Errorf("smtp host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("smtp port must be between 1 and 65535")
		}
		switch c.SMTP.Security {
		case SecurityTLS, SecuritySSL, SecurityNone:
		default:
			return fmt.Errorf("smtp security must be tls, ssl or none")
		}
		if c.SMTP.Timeout <= 0 {
			return fmt.Errorf("smtp timeout must be positive")
		}
	case ProviderSES:
		if c.Region == "" {
			return fmt.Errorf("aws region is required for ses")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Provider)
	}
	return nil
}

package buildreport

import (
	"fmt"
	texttemplate "text/template"

	"work-planner/internal/common/config"
)

type Config struct {
	SubjectTemplate    string
	MaxTicketRows      int
	MaxItemsPerUrgency int
	AppName            string
}

func DefaultConfig() *Config {
	return &Config{
		SubjectTemplate:    config.DefaultSubjectTemplate,
		MaxTicketRows:      10,
		MaxItemsPerUrgency: 10,
		AppName:            "Work Planner",
	}
}

func FromAppConfig(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg.Email.SubjectTemplate != "" {
		c.SubjectTemplate = cfg.Email.SubjectTemplate
	}
	if cfg.Report.MaxTicketRows > 0 {
		c.MaxTicketRows = cfg.Report.MaxTicketRows
	}
	if cfg.Report.MaxItemsPerUrgency > 0 {
		c.MaxItemsPerUrgency = cfg.Report.MaxItemsPerUrgency
	}
	if cfg.App.Name != "" {
		c.AppName = cfg.App.Name
	}
	return c
}

func (c *Config) Validate() error {
	if c.MaxTicketRows <= 0 || c.MaxItemsPerUrgency <= 0 {
		return fmt.Errorf("report limits must be positive")
	}
	if _, err := texttemplate.New("subject").Option("missingkey=error").Parse(c.SubjectTemplate); err != nil {
		return fmt.Errorf("subject template: %w", err)
	}
	return nil
}

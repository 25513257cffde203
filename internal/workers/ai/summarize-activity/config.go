package summarizeactivity

import (
	"fmt"
	"text/template"

	"work-planner/internal/common/config"
)

type Config struct {
	Enabled               bool
	ExecutivePrompt       string
	ChannelPrompt         string
	MaxMessagesPerChannel int
	MaxTickets            int
	MaxChannels           int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:               true,
		ExecutivePrompt:       config.DefaultExecutivePrompt,
		ChannelPrompt:         config.DefaultChannelPrompt,
		MaxMessagesPerChannel: 10,
		MaxTickets:            5,
		MaxChannels:           5,
	}
}

func FromAppConfig(c config.SummaryConfig) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = c.Enabled
	if c.ExecutivePrompt != "" {
		cfg.ExecutivePrompt = c.ExecutivePrompt
	}
	if c.ChannelPrompt != "" {
		cfg.ChannelPrompt = c.ChannelPrompt
	}
	if c.MaxMessagesPerChannel > 0 {
		cfg.MaxMessagesPerChannel = c.MaxMessagesPerChannel
	}
	if c.MaxTickets > 0 {
		cfg.MaxTickets = c.MaxTickets
	}
	return cfg
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MaxMessagesPerChannel <= 0 || c.MaxTickets <= 0 || c.MaxChannels <= 0 {
		return fmt.Errorf("summary limits must be positive")
	}
	for name, p := range map[string]string{"executive": c.ExecutivePrompt, "channel": c.ChannelPrompt} {
		if _, err := template.New(name).Option("missingkey=error").Parse(p); err != nil {
			return fmt.Errorf("%s prompt: %w", name, err)
		}
	}
	return nil
}

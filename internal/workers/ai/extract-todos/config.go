package extracttodos

import (
	"fmt"
	"text/template"

	"work-planner/internal/common/config"
	"work-planner/internal/models"
)

type SourceConfig struct {
	Enabled             bool
	PriorityWeight      float64
	Prompt              string
	MentionsOnly        bool
	AnalyzeDescriptions bool
	AnalyzeComments     bool
}

type Config struct {
	SystemPrompt        string
	ConfidenceThreshold float64
	MaxTodosPerItem     int
	MaxItemsPerSource   int
	Sources             map[models.Source]SourceConfig
}

func DefaultConfig() *Config {
	return &Config{
		SystemPrompt:        config.DefaultSystemPrompt,
		ConfidenceThreshold: 0.6,
		MaxTodosPerItem:     3,
		MaxItemsPerSource:   100,
		Sources: map[models.Source]SourceConfig{
			models.SourceEmail: {Enabled: true, PriorityWeight: 1.2, Prompt: config.DefaultEmailPrompt},
			models.SourceJira: {Enabled: true, PriorityWeight: 1.0, Prompt: config.DefaultJiraPrompt,
				AnalyzeDescriptions: true, AnalyzeComments: true},
			models.SourceSlack: {Enabled: true, PriorityWeight: 0.9, Prompt: config.DefaultSlackPrompt},
		},
	}
}

func FromAppConfig(c config.TodoExtractionConfig) *Config {
	cfg := &Config{
		SystemPrompt:        c.SystemPrompt,
		ConfidenceThreshold: c.ConfidenceThreshold,
		MaxTodosPerItem:     c.MaxTodosPerItem,
		MaxItemsPerSource:   c.MaxItemsPerSource,
		Sources:             map[models.Source]SourceConfig{},
	}
	for _, src := range models.Sources {
		s := c.Source(string(src))
		cfg.Sources[src] = SourceConfig{
			Enabled:             c.Enabled && s.Enabled,
			PriorityWeight:      s.PriorityWeight,
			Prompt:              s.Prompt,
			MentionsOnly:        s.MentionsOnly,
			AnalyzeDescriptions: s.AnalyzeDescriptions,
			AnalyzeComments:     s.AnalyzeComments,
		}
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be within [0,1]")
	}
	if c.MaxTodosPerItem <= 0 {
		return fmt.Errorf("max_todos_per_item must be positive")
	}
	if c.MaxItemsPerSource <= 0 {
		return fmt.Errorf("max_items_per_source must be positive")
	}
	for src, s := range c.Sources {
		if !s.Enabled {
			continue
		}
		if s.Prompt == "" {
			return fmt.Errorf("%s prompt is required", src)
		}
		if _, err := template.New(string(src)).Option("missingkey=error").Parse(s.Prompt); err != nil {
			return fmt.Errorf("%s prompt: %w", src, err)
		}
	}
	return nil
}

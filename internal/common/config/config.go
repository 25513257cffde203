// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the full configuration for one run. It is built once by Load
// and handed to each collaborator.
type Config struct {
	App            AppConfig             `mapstructure:"app"`
	Logging        LoggingConfig         `mapstructure:"logging"`
	Run            RunConfig             `mapstructure:"run"`
	Teams          map[string]TeamConfig `mapstructure:"teams"`
	Slack          SlackConfig           `mapstructure:"slack"`
	Jira           JiraConfig            `mapstructure:"jira"`
	Email          EmailConfig           `mapstructure:"email"`
	GenAI          GenAIConfig           `mapstructure:"genai"`
	TodoExtraction TodoExtractionConfig  `mapstructure:"todo_extraction"`
	Summary        SummaryConfig         `mapstructure:"summary"`
	Report         ReportConfig          `mapstructure:"report"`
	Redis          RedisConfig           `mapstructure:"redis"`
	AWS            AWSConfig             `mapstructure:"aws"`
	Metrics        MetricsConfig         `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RunConfig struct {
	DaysBack int `mapstructure:"days_back"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// --- Teams ---

type ChannelConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

type TeamJiraConfig struct {
	Project      string   `mapstructure:"project"`
	AssignedTeam string   `mapstructure:"assigned_team"`
	Statuses     []string `mapstructure:"statuses"`
}

// TeamConfig describes one team's sources and report recipients.
type TeamConfig struct {
	Name          string          `mapstructure:"name"`
	Aliases       []string        `mapstructure:"aliases"`
	SlackChannels []ChannelConfig `mapstructure:"slack_channels"`
	Jira          TeamJiraConfig  `mapstructure:"jira"`
	Recipients    []string        `mapstructure:"recipients"`
	CC            []string        `mapstructure:"cc"`
	BCC           []string        `mapstructure:"bcc"`
}

// ResolveTeam finds a team by key, display name or alias, ignoring case.
func (c *Config) ResolveTeam(name string) (string, TeamConfig, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", TeamConfig{}, false
	}
	for key, team := range c.Teams {
		if strings.ToLower(key) == needle || strings.ToLower(team.Name) == needle {
			return key, team, true
		}
		for _, alias := range team.Aliases {
			if strings.ToLower(alias) == needle {
				return key, team, true
			}
		}
	}
	return "", TeamConfig{}, false
}

// TeamNames lists configured team keys.
func (c *Config) TeamNames() []string {
	names := make([]string, 0, len(c.Teams))
	for k := range c.Teams {
		names = append(names, k)
	}
	return names
}

// --- Sources ---

type SlackUser struct {
	ID          string `mapstructure:"id"`
	DisplayName string `mapstructure:"display_name"`
}

type SlackConfig struct {
	BaseURL      string      `mapstructure:"base_url"`
	Token        string      `mapstructure:"token"`  // xoxc
	Cookie       string      `mapstructure:"cookie"` // xoxd, sent as the "d" cookie
	WorkspaceURL string      `mapstructure:"workspace_url"`
	MaxMessages  int         `mapstructure:"max_messages"`
	Timeout      int         `mapstructure:"timeout"`   // milliseconds
	CacheTTL     int         `mapstructure:"cache_ttl"` // milliseconds
	Users        []SlackUser `mapstructure:"users"`
}

type JiraConfig struct {
	URL        string `mapstructure:"url"`
	Token      string `mapstructure:"token"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type IMAPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	Mailbox     string `mapstructure:"mailbox"`
	MaxMessages int    `mapstructure:"max_messages"`
	Timeout     int    `mapstructure:"timeout"` // milliseconds
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Security string `mapstructure:"security"` // tls (STARTTLS), ssl, none
	Timeout  int    `mapstructure:"timeout"`  // milliseconds
}

type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	Delay       int `mapstructure:"delay"` // milliseconds
}

type EmailConfig struct {
	Provider        string      `mapstructure:"provider"` // smtp or ses
	From            string      `mapstructure:"from"`
	FromName        string      `mapstructure:"from_name"`
	SubjectTemplate string      `mapstructure:"subject_template"`
	IMAP            IMAPConfig  `mapstructure:"imap"`
	SMTP            SMTPConfig  `mapstructure:"smtp"`
	Retry           RetryConfig `mapstructure:"retry"`
}

// --- AI ---

type GenAIConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top_p"`
	TopK            float32 `mapstructure:"top_k"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
}

// SourceExtractionConfig holds per-source extraction settings.
type SourceExtractionConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	PriorityWeight      float64 `mapstructure:"priority_weight"`
	Prompt              string  `mapstructure:"prompt"`
	MentionsOnly        bool    `mapstructure:"mentions_only"`
	AnalyzeDescriptions bool    `mapstructure:"analyze_descriptions"`
	AnalyzeComments     bool    `mapstructure:"analyze_comments"`
}

// ExtractionSources holds one settings block per source. Fields left out of
// the YAML keep their defaults.
type ExtractionSources struct {
	Email SourceExtractionConfig `mapstructure:"email"`
	Jira  SourceExtractionConfig `mapstructure:"jira"`
	Slack SourceExtractionConfig `mapstructure:"slack"`
}

type TodoExtractionConfig struct {
	Enabled             bool              `mapstructure:"enabled"`
	ConfidenceThreshold float64           `mapstructure:"confidence_threshold"`
	MaxTodosPerItem     int               `mapstructure:"max_todos_per_item"`
	MaxItemsPerSource   int               `mapstructure:"max_items_per_source"`
	SystemPrompt        string            `mapstructure:"system_prompt"`
	Sources             ExtractionSources `mapstructure:"sources"`
}

// Source returns the settings for one source, or a disabled zero value for
// an unknown name.
func (t TodoExtractionConfig) Source(name string) SourceExtractionConfig {
	if s := t.Sources.ref(name); s != nil {
		return *s
	}
	return SourceExtractionConfig{}
}

func (s *ExtractionSources) ref(name string) *SourceExtractionConfig {
	switch name {
	case "email":
		return &s.Email
	case "jira":
		return &s.Jira
	case "slack":
		return &s.Slack
	}
	return nil
}

// DefaultSourceExtraction is the built-in setting for one source.
func DefaultSourceExtraction(name string) SourceExtractionConfig {
	switch name {
	case "email":
		return SourceExtractionConfig{Enabled: true, PriorityWeight: 1.2, Prompt: DefaultEmailPrompt}
	case "jira":
		return SourceExtractionConfig{
			Enabled:             true,
			PriorityWeight:      1.0,
			Prompt:              DefaultJiraPrompt,
			AnalyzeDescriptions: true,
			AnalyzeComments:     true,
		}
	case "slack":
		return SourceExtractionConfig{Enabled: true, PriorityWeight: 0.9, Prompt: DefaultSlackPrompt}
	}
	return SourceExtractionConfig{}
}

type SummaryConfig struct {
	Enabled               bool   `mapstructure:"enabled"`
	ExecutivePrompt       string `mapstructure:"executive_prompt"`
	ChannelPrompt         string `mapstructure:"channel_prompt"`
	MaxMessagesPerChannel int    `mapstructure:"max_messages_per_channel"`
	MaxTickets            int    `mapstructure:"max_tickets"`
}

type ReportConfig struct {
	MaxTicketRows      int `mapstructure:"max_ticket_rows"`
	MaxItemsPerUrgency int `mapstructure:"max_items_per_urgency"`
}

// --- AWS ---

type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
	SNS struct {
		AlertTopicARN string `mapstructure:"alert_topic_arn"`
	} `mapstructure:"sns"`
}

// Address returns host:port for the inbox.
func (i IMAPConfig) Address() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

// Address returns host:port for the SMTP server.
func (s SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

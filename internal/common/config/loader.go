// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "work-planner/internal/common/errors"
)

// Load reads configs/config.yaml (or ./config.yaml) merged with
// config.<APP_ENVIRONMENT>.yaml, environment overrides and .env.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("error reading base config: %v", err))
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v)
}

// LoadFromFile reads configuration from a specific file. The file must exist.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("failed to read config file %s: %v", path, err))
	}

	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setViperDefaults(v)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	overrideEmptyConfig(&cfg)
	applySourceDefaults(v, &cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, apperrors.NewConfigInvalidError(err.Error())
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found in the working directory, its
// parents, or the module root.
func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// setViperDefaults covers values whose zero value is meaningful (booleans,
// prompts) and therefore cannot be filled in after unmarshal.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("todo_extraction.enabled", true)
	v.SetDefault("todo_extraction.confidence_threshold", 0.6)
	v.SetDefault("todo_extraction.system_prompt", DefaultSystemPrompt)

	v.SetDefault("email.retry.delay", 30000)

	v.SetDefault("summary.enabled", true)
	v.SetDefault("summary.executive_prompt", DefaultExecutivePrompt)
	v.SetDefault("summary.channel_prompt", DefaultChannelPrompt)
}

var sourceKeys = []string{"email", "jira", "slack"}

// applySourceDefaults starts every source from DefaultSourceExtraction and
// keeps only the fields the YAML or environment actually set. Unmarshal alone
// drops the defaults of a source once any sibling key is configured.
func applySourceDefaults(v *viper.Viper, cfg *Config) {
	for _, name := range sourceKeys {
		got := cfg.TodoExtraction.Sources.ref(name)
		merged := DefaultSourceExtraction(name)
		prefix := "todo_extraction.sources." + name + "."
		if v.IsSet(prefix + "enabled") {
			merged.Enabled = got.Enabled
		}
		if v.IsSet(prefix + "priority_weight") {
			merged.PriorityWeight = got.PriorityWeight
		}
		if v.IsSet(prefix+"prompt") && got.Prompt != "" {
			merged.Prompt = got.Prompt
		}
		if v.IsSet(prefix + "mentions_only") {
			merged.MentionsOnly = got.MentionsOnly
		}
		if v.IsSet(prefix + "analyze_descriptions") {
			merged.AnalyzeDescriptions = got.AnalyzeDescriptions
		}
		if v.IsSet(prefix + "analyze_comments") {
			merged.AnalyzeComments = got.AnalyzeComments
		}
		*got = merged
	}
}

// overrideEmptyConfig fills secrets from the conventional environment
// variables when the YAML leaves them empty.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty := func(dst *string, envKey string) {
		if *dst != "" {
			return
		}
		if val := os.Getenv(envKey); val != "" {
			*dst = val
		}
	}

	setIfEmpty(&cfg.GenAI.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&cfg.Slack.Token, "SLACK_XOXC_TOKEN")
	setIfEmpty(&cfg.Slack.Cookie, "SLACK_XOXD_TOKEN")
	setIfEmpty(&cfg.Jira.URL, "JIRA_URL")
	setIfEmpty(&cfg.Jira.Token, "JIRA_API_TOKEN")
	setIfEmpty(&cfg.Email.IMAP.Username, "EMAIL_USERNAME")
	setIfEmpty(&cfg.Email.IMAP.Password, "EMAIL_PASSWORD")
	setIfEmpty(&cfg.Email.SMTP.Username, "EMAIL_USERNAME")
	setIfEmpty(&cfg.Email.SMTP.Password, "EMAIL_PASSWORD")
	setIfEmpty(&cfg.Email.From, "EMAIL_FROM")
	setIfEmpty(&cfg.Redis.Password, "REDIS_PASSWORD")
}

// applyDefaults fills numeric and string fields left at their zero value.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "work-planner"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Run.DaysBack == 0 {
		cfg.Run.DaysBack = 1
	}

	if cfg.Slack.BaseURL == "" {
		cfg.Slack.BaseURL = "https://slack.com/api"
	}
	if cfg.Slack.MaxMessages == 0 {
		cfg.Slack.MaxMessages = 100
	}
	if cfg.Slack.Timeout == 0 {
		cfg.Slack.Timeout = 30000
	}
	if cfg.Slack.CacheTTL == 0 {
		cfg.Slack.CacheTTL = 24 * 60 * 60 * 1000
	}

	cfg.Jira.URL = strings.TrimRight(cfg.Jira.URL, "/")
	if cfg.Jira.MaxResults == 0 {
		cfg.Jira.MaxResults = 100
	}
	if cfg.Jira.Timeout == 0 {
		cfg.Jira.Timeout = 30000
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "smtp"
	}
	if cfg.Email.SubjectTemplate == "" {
		cfg.Email.SubjectTemplate = DefaultSubjectTemplate
	}
	if cfg.Email.IMAP.Port == 0 {
		cfg.Email.IMAP.Port = 993
	}
	if cfg.Email.IMAP.Mailbox == "" {
		cfg.Email.IMAP.Mailbox = "INBOX"
	}
	if cfg.Email.IMAP.MaxMessages == 0 {
		cfg.Email.IMAP.MaxMessages = 50
	}
	if cfg.Email.IMAP.Timeout == 0 {
		cfg.Email.IMAP.Timeout = 30000
	}
	if cfg.Email.SMTP.Port == 0 {
		cfg.Email.SMTP.Port = 587
	}
	if cfg.Email.SMTP.Security == "" {
		cfg.Email.SMTP.Security = "tls"
	}
	if cfg.Email.SMTP.Timeout == 0 {
		cfg.Email.SMTP.Timeout = 30000
	}
	if cfg.Email.Retry.MaxAttempts == 0 {
		cfg.Email.Retry.MaxAttempts = 3
	}

	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = "gemini-2.0-flash"
	}
	if cfg.GenAI.Temperature == 0 {
		cfg.GenAI.Temperature = 0.3
	}
	if cfg.GenAI.TopP == 0 {
		cfg.GenAI.TopP = 0.9
	}
	if cfg.GenAI.TopK == 0 {
		cfg.GenAI.TopK = 40
	}
	if cfg.GenAI.MaxOutputTokens == 0 {
		cfg.GenAI.MaxOutputTokens = 2000
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 60000
	}

	if cfg.TodoExtraction.MaxTodosPerItem == 0 {
		cfg.TodoExtraction.MaxTodosPerItem = 3
	}
	if cfg.TodoExtraction.MaxItemsPerSource == 0 {
		cfg.TodoExtraction.MaxItemsPerSource = 100
	}

	if cfg.Summary.MaxMessagesPerChannel == 0 {
		cfg.Summary.MaxMessagesPerChannel = 10
	}
	if cfg.Summary.MaxTickets == 0 {
		cfg.Summary.MaxTickets = 5
	}

	if cfg.Report.MaxTicketRows == 0 {
		cfg.Report.MaxTicketRows = 10
	}
	if cfg.Report.MaxItemsPerUrgency == 0 {
		cfg.Report.MaxItemsPerUrgency = 10
	}

	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "work_planner"
	}

	for key, team := range cfg.Teams {
		if team.Name == "" {
			team.Name = key
		}
		if len(team.Jira.Statuses) == 0 {
			team.Jira.Statuses = []string{"In Progress", "To Do", "In Review"}
		}
		cfg.Teams[key] = team
	}
}

// validateConfig reports the first missing or invalid required field.
func validateConfig(cfg *Config) error {
	if len(cfg.Teams) == 0 {
		return fmt.Errorf("at least one team must be configured under teams")
	}
	if cfg.GenAI.APIKey == "" {
		return fmt.Errorf("genai.api_key (or GEMINI_API_KEY) is required")
	}

	t := cfg.TodoExtraction
	if t.ConfidenceThreshold < 0 || t.ConfidenceThreshold > 1 {
		return fmt.Errorf("todo_extraction.confidence_threshold must be within [0,1], got %v", t.ConfidenceThreshold)
	}
	if t.MaxTodosPerItem < 0 {
		return fmt.Errorf("todo_extraction.max_todos_per_item must not be negative")
	}

	if t.Source("slack").Enabled && cfg.Slack.Token == "" {
		return fmt.Errorf("slack.token (or SLACK_XOXC_TOKEN) is required when slack extraction is enabled")
	}
	if t.Source("jira").Enabled && (cfg.Jira.URL == "" || cfg.Jira.Token == "") {
		return fmt.Errorf("jira.url and jira.token are required when jira extraction is enabled")
	}
	if t.Source("email").Enabled && (cfg.Email.IMAP.Host == "" || cfg.Email.IMAP.Username == "") {
		return fmt.Errorf("email.imap.host and email.imap.username are required when email extraction is enabled")
	}

	switch cfg.Email.Provider {
	case "smtp":
		if cfg.Email.SMTP.Host == "" {
			return fmt.Errorf("email.smtp.host is required")
		}
		switch cfg.Email.SMTP.Security {
		case "tls", "ssl", "none":
		default:
			return fmt.Errorf("email.smtp.security must be tls, ssl or none, got %q", cfg.Email.SMTP.Security)
		}
	case "ses":
		if cfg.AWS.Region == "" {
			return fmt.Errorf("aws.region is required for the ses provider")
		}
	default:
		return fmt.Errorf("email.provider must be smtp or ses, got %q", cfg.Email.Provider)
	}
	if cfg.Email.From == "" && cfg.AWS.SES.FromEmail == "" {
		return fmt.Errorf("email.from (or EMAIL_FROM) is required")
	}

	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "work-planner/internal/common/errors"
)

const validYAML = `
app:
  name: work-planner
genai:
  api_key: test-key
slack:
  token: xoxc-test
  users:
    - id: U123ABC
      display_name: Alice
jira:
  url: https://jira.example.com/
  token: jira-token
email:
  from: planner@example.com
  imap:
    host: imap.example.com
    username: planner@example.com
  smtp:
    host: smtp.example.com
teams:
  toolchain:
    name: Toolchain
    aliases: [tc, tools]
    slack_channels:
      - id: C01
        name: toolchain-dev
    jira:
      project: TOOL
      assigned_team: Toolchain
    recipients: [lead@example.com]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://jira.example.com", cfg.Jira.URL)
	assert.Equal(t, 0.6, cfg.TodoExtraction.ConfidenceThreshold)
	assert.Equal(t, 3, cfg.TodoExtraction.MaxTodosPerItem)
	assert.Equal(t, 3, cfg.Email.Retry.MaxAttempts)
	assert.Equal(t, 30000, cfg.Email.Retry.Delay)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.GenAI.Model)
	assert.Equal(t, int32(2000), cfg.GenAI.MaxOutputTokens)

	email := cfg.TodoExtraction.Source("email")
	assert.True(t, email.Enabled)
	assert.Equal(t, 1.2, email.PriorityWeight)
	assert.Equal(t, 0.9, cfg.TodoExtraction.Source("slack").PriorityWeight)
	assert.Equal(t, DefaultJiraPrompt, cfg.TodoExtraction.Source("jira").Prompt)

	team := cfg.Teams["toolchain"]
	assert.Equal(t, []string{"In Progress", "To Do", "In Review"}, team.Jira.Statuses)
	assert.Equal(t, "U123ABC", cfg.Slack.Users[0].ID)
}

func TestLoadFromFile_PartialSourceKeepsDefaults(t *testing.T) {
	body := validYAML + `
todo_extraction:
  sources:
    slack:
      mentions_only: true
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	for _, name := range []string{"email", "jira", "slack"} {
		src := cfg.TodoExtraction.Source(name)
		assert.True(t, src.Enabled, name)
		assert.NotEmpty(t, src.Prompt, name)
		assert.NotZero(t, src.PriorityWeight, name)
	}
	slack := cfg.TodoExtraction.Sources.Slack
	assert.True(t, slack.MentionsOnly)
	assert.Equal(t, DefaultSlackPrompt, slack.Prompt)
	assert.True(t, cfg.TodoExtraction.Sources.Jira.AnalyzeComments)
}

func TestLoadFromFile_DisablingOneSourceLeavesOthers(t *testing.T) {
	body := validYAML + `
todo_extraction:
  sources:
    email:
      enabled: false
    jira:
      priority_weight: 2.5
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)

	assert.False(t, cfg.TodoExtraction.Source("email").Enabled)
	assert.Equal(t, DefaultEmailPrompt, cfg.TodoExtraction.Source("email").Prompt)
	assert.True(t, cfg.TodoExtraction.Source("jira").Enabled)
	assert.Equal(t, 2.5, cfg.TodoExtraction.Source("jira").PriorityWeight)
	assert.True(t, cfg.TodoExtraction.Source("slack").Enabled)
	assert.Equal(t, 0.9, cfg.TodoExtraction.Source("slack").PriorityWeight)
}

func TestLoadFromFile_ZeroRetryDelayIsHonored(t *testing.T) {
	body := strings.Replace(validYAML, "  smtp:\n    host: smtp.example.com\n",
		"  smtp:\n    host: smtp.example.com\n  retry:\n    delay: 0\n", 1)
	require.Contains(t, body, "delay: 0")

	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Email.Retry.Delay)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("PLANNER_TEST_JIRA_TOKEN", "from-env")
	body := validYAML + "\n" + `
metrics:
  job: ${PLANNER_TEST_JIRA_TOKEN}
`
	cfg, err := LoadFromFile(writeConfig(t, body))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Metrics.Job)
}

func TestLoadFromFile_MissingFileIsConfigError(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.ExtractCode(err))
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFromFile(writeConfig(t, validYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no teams", func(c *Config) { c.Teams = nil }, "team"},
		{"no api key", func(c *Config) { c.GenAI.APIKey = "" }, "genai.api_key"},
		{"threshold out of range", func(c *Config) { c.TodoExtraction.ConfidenceThreshold = 1.5 }, "confidence_threshold"},
		{"bad provider", func(c *Config) { c.Email.Provider = "pigeon" }, "email.provider"},
		{"bad security", func(c *Config) { c.Email.SMTP.Security = "starttls" }, "security"},
		{"ses without region", func(c *Config) { c.Email.Provider = "ses" }, "aws.region"},
		{"redis without address", func(c *Config) { c.Redis.Enabled = true }, "redis.address"},
		{"slack disabled needs no token", func(c *Config) {
			c.TodoExtraction.Sources.Slack.Enabled = false
			c.Slack.Token = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveTeam(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, validYAML))
	require.NoError(t, err)

	for _, name := range []string{"toolchain", "TOOLCHAIN", "Toolchain", "tc", "Tools"} {
		key, team, ok := cfg.ResolveTeam(name)
		require.True(t, ok, name)
		assert.Equal(t, "toolchain", key)
		assert.Equal(t, "TOOL", team.Jira.Project)
	}

	_, _, ok := cfg.ResolveTeam("unknown")
	assert.False(t, ok)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}

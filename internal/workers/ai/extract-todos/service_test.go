package extracttodos

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/llm"
	"work-planner/internal/common/logger"
	"work-planner/internal/models"
)

func newService(t *testing.T, gen llm.Generator, mutate func(*Config)) *Service {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	svc, err := NewService(cfg, ServiceDependencies{Generator: gen, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return svc
}

func TestExtractEmail_ThresholdCapAndMetadata(t *testing.T) {
	gen := llm.NewStaticGenerator(llm.Response{Text: `[
		{"description": "a", "urgency": "high", "confidence": 0.9},
		{"description": "b", "urgency": "low", "confidence": 0.5},
		{"description": "c", "urgency": "medium", "confidence": 0.7},
		{"description": "d", "urgency": "medium", "confidence": 0.8},
		{"description": "e", "urgency": "medium", "confidence": 0.95}
	]`})
	svc := newService(t, gen, nil)

	res := svc.ExtractEmail(context.Background(), []models.EmailMessage{{
		UID:     7,
		From:    "alice@example.com",
		Subject: "Release",
		Date:    time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
		Body:    strings.Repeat("x", 3000),
	}})

	require.True(t, res.Success())
	assert.Equal(t, 1, res.ItemsAnalyzed)
	require.Len(t, res.Items, 3)
	assert.Equal(t, []string{"a", "c", "d"}, []string{res.Items[0].Description, res.Items[1].Description, res.Items[2].Description})

	item := res.Items[0]
	assert.Equal(t, models.SourceEmail, item.Source)
	assert.Equal(t, 1.2, item.PriorityWeight)
	assert.Equal(t, map[string]string{"from": "alice@example.com", "subject": "Release", "date": "2024-05-02 09:30"}, item.Metadata)

	prompts := gen.Prompts()
	require.Len(t, prompts, 1)
	assert.True(t, strings.HasPrefix(prompts[0], DefaultConfig().SystemPrompt+"\n\n"))
	assert.Contains(t, prompts[0], "Subject: Release")
	assert.Contains(t, prompts[0], strings.Repeat("x", 2000))
	assert.NotContains(t, prompts[0], strings.Repeat("x", 2001))
}

func TestExtractJira_MalformedItemIsSkipped(t *testing.T) {
	gen := llm.NewStaticGenerator(
		llm.Response{Text: "I could not find anything useful"},
		llm.Response{Text: `[{"description": "Fix the linker", "urgency": "critical", "confidence": 0.85}]`},
	)
	svc := newService(t, gen, nil)

	res := svc.ExtractJira(context.Background(), []models.JiraIssue{
		{Key: "TOOL-1", Summary: "Docs", Status: "To Do"},
		{Key: "TOOL-2", Summary: "Linker", Status: "In Progress", Assignee: "Alice", Priority: "High",
			URL: "https://jira.example.com/browse/TOOL-2", Description: "ld fails",
			Comments: []models.JiraComment{{Author: "Bob", Body: "blocking release"}}},
	})

	require.True(t, res.Success())
	assert.Equal(t, 2, res.ItemsAnalyzed)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "TOOL-2", res.Items[0].Metadata["issue_key"])
	assert.Equal(t, "https://jira.example.com/browse/TOOL-2", res.Items[0].Metadata["issue_link"])
	assert.Contains(t, gen.Prompts()[1], "- Bob: blocking release")
}

func TestExtractJira_DescriptionsDisabled(t *testing.T) {
	gen := llm.NewStaticGenerator()
	svc := newService(t, gen, func(c *Config) {
		s := c.Sources[models.SourceJira]
		s.AnalyzeDescriptions = false
		c.Sources[models.SourceJira] = s
	})

	svc.ExtractJira(context.Background(), []models.JiraIssue{{Key: "TOOL-3", Description: "secret details"}})
	assert.Contains(t, gen.Prompts()[0], "Description analysis disabled")
	assert.NotContains(t, gen.Prompts()[0], "secret details")
}

func TestExtractSlack_AllCallsFailIsSourceError(t *testing.T) {
	gen := llm.NewStaticGenerator(llm.Response{Err: apperrors.NewAIRequestFailedError("extract-slack", errors.New("quota"))})
	svc := newService(t, gen, nil)

	res := svc.ExtractSlack(context.Background(), []models.SlackMessage{
		{ChannelID: "C1", ChannelName: "dev", TS: "1.1", Text: "hi"},
		{ChannelID: "C1", ChannelName: "dev", TS: "1.2", Text: "there"},
	}, nil)

	require.False(t, res.Success())
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.ItemsAnalyzed)
	assert.Equal(t, apperrors.ErrCodeAIRequestFailed, apperrors.ExtractCode(res.Err))
}

func TestExtractSlack_MentionsOnlyAndLinks(t *testing.T) {
	gen := llm.NewStaticGenerator(llm.Response{Text: `[{"description": "Review PR", "urgency": "medium", "confidence": 0.7}]`})
	svc := newService(t, gen, func(c *Config) {
		s := c.Sources[models.SourceSlack]
		s.MentionsOnly = true
		c.Sources[models.SourceSlack] = s
	})

	res := svc.ExtractSlack(context.Background(), []models.SlackMessage{
		{ChannelID: "C1", ChannelName: "dev", UserName: "alice", TS: "1.1", Text: "lunch?"},
		{ChannelID: "C1", ChannelName: "dev", UserName: "alice", TS: "1.2", Text: "@bob can you review"},
	}, func(m models.SlackMessage) string { return "link/" + m.TS })

	require.True(t, res.Success())
	assert.Equal(t, 1, res.ItemsAnalyzed)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "link/1.2", res.Items[0].Metadata["message_link"])
	assert.Equal(t, "alice", res.Items[0].Metadata["sender"])
	assert.Equal(t, 0.9, res.Items[0].PriorityWeight)
}

func TestExtract_MaxItemsPerSource(t *testing.T) {
	gen := llm.NewStaticGenerator()
	svc := newService(t, gen, func(c *Config) { c.MaxItemsPerSource = 2 })

	msgs := make([]models.EmailMessage, 5)
	res := svc.ExtractEmail(context.Background(), msgs)
	assert.Equal(t, 2, res.ItemsAnalyzed)
	assert.Len(t, gen.Prompts(), 2)
}

func TestExtract_DisabledSource(t *testing.T) {
	svc := newService(t, llm.NewStaticGenerator(), func(c *Config) {
		s := c.Sources[models.SourceEmail]
		s.Enabled = false
		c.Sources[models.SourceEmail] = s
	})
	res := svc.ExtractEmail(context.Background(), nil)
	assert.Equal(t, apperrors.ErrCodeSourceDisabled, apperrors.ExtractCode(res.Err))
}

func TestNewService_RejectsBadTemplate(t *testing.T) {
	cfg := DefaultConfig()
	s := cfg.Sources[models.SourceEmail]
	s.Prompt = "{{.From"
	cfg.Sources[models.SourceEmail] = s

	_, err := NewService(cfg, ServiceDependencies{Generator: llm.NewStaticGenerator()})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigInvalid, apperrors.ExtractCode(err))
}

package summarizeactivity

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode/utf8"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/llm"
	"work-planner/internal/common/logger"
	"work-planner/internal/models"
)

type ServiceDependencies struct {
	Generator llm.Generator
	Logger    logger.Logger
}

// Service writes the prose parts of the report. Model failures degrade to
// the NotAvailable placeholder and never fail the run.
type Service struct {
	config    *Config
	generator llm.Generator
	executive *template.Template
	channel   *template.Template
	logger    logger.Logger
}

func NewService(cfg *Config, deps ServiceDependencies) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("summary: %v", err))
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	s := &Service{config: cfg, generator: deps.Generator, logger: log.Named("summarize-activity")}
	if !cfg.Enabled {
		return s, nil
	}
	if deps.Generator == nil {
		return nil, apperrors.NewConfigInvalidError("summary: generator is required")
	}
	s.executive = template.Must(template.New("executive").Option("missingkey=error").Parse(cfg.ExecutivePrompt))
	s.channel = template.Must(template.New("channel").Option("missingkey=error").Parse(cfg.ChannelPrompt))
	return s, nil
}

func (s *Service) Execute(ctx context.Context, input *Input) *Output {
	out := &Output{Executive: NotAvailable, Channels: make([]ChannelSummary, 0, len(input.Channels))}

	for _, ch := range input.Channels {
		cs := ChannelSummary{
			ChannelID:    ch.ChannelID,
			ChannelName:  ch.ChannelName,
			MessageCount: len(ch.Messages),
			Summary:      NotAvailable,
		}
		if s.config.Enabled && len(ch.Messages) > 0 {
			if text, err := s.summarizeChannel(ctx, ch); err == nil {
				cs.Summary, cs.Available = text, true
			} else {
				s.logger.Warn("Channel summary unavailable", map[string]interface{}{
					"channel": ch.ChannelName,
					"error":   err.Error(),
				})
			}
		}
		out.Channels = append(out.Channels, cs)
	}

	if !s.config.Enabled {
		return out
	}
	if len(input.Channels) == 0 && len(input.Issues) == 0 {
		s.logger.Info("No activity to summarize", map[string]interface{}{"team": input.Team})
		return out
	}

	text, err := s.summarizeExecutive(ctx, input, out.Channels)
	if err != nil {
		s.logger.Warn("Executive summary unavailable", map[string]interface{}{
			"team":  input.Team,
			"error": err.Error(),
		})
		return out
	}
	out.Executive, out.ExecutiveAvailable = text, true
	return out
}

func (s *Service) summarizeChannel(ctx context.Context, ch models.SlackChannelActivity) (string, error) {
	prompt, err := render(s.channel, channelData{
		Channel:  ch.ChannelName,
		Messages: FormatMessages(ch.Messages, s.config.MaxMessagesPerChannel),
	})
	if err != nil {
		return "", err
	}
	return s.generate(ctx, "channel-summary", prompt)
}

func (s *Service) summarizeExecutive(ctx context.Context, input *Input, channels []ChannelSummary) (string, error) {
	prompt, err := render(s.executive, executiveData{
		Team:          input.Team,
		Date:          input.Date,
		SlackActivity: s.slackActivity(channels),
		JiraActivity:  s.jiraActivity(input.Issues),
	})
	if err != nil {
		return "", err
	}
	return s.generate(ctx, "executive-summary", prompt)
}

func (s *Service) generate(ctx context.Context, purpose, prompt string) (string, error) {
	text, err := s.generator.Generate(ctx, purpose, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewAIRequestFailedError(purpose, fmt.Errorf("empty summary"))
	}
	return text, nil
}

func (s *Service) slackActivity(channels []ChannelSummary) string {
	if len(channels) == 0 {
		return "No Slack activity"
	}
	if len(channels) > s.config.MaxChannels {
		channels = channels[:s.config.MaxChannels]
	}
	lines := make([]string, 0, len(channels))
	for _, ch := range channels {
		line := fmt.Sprintf("- #%s (%d messages)", ch.ChannelName, ch.MessageCount)
		if ch.Available {
			line += ": " + ch.Summary
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (s *Service) jiraActivity(issues []models.JiraIssue) string {
	if len(issues) == 0 {
		return "No Jira tickets"
	}
	if len(issues) > s.config.MaxTickets {
		issues = issues[:s.config.MaxTickets]
	}
	lines := make([]string, 0, len(issues))
	for _, is := range issues {
		lines = append(lines, fmt.Sprintf("- %s: %s [%s] (%s, priority %s)",
			is.Key, is.Summary, is.Status, is.Assignee, is.Priority))
	}
	return strings.Join(lines, "\n")
}

// FormatMessages renders the most recent limit messages oldest first as
// "[HH:MM] user: text", each text cut to 150 characters.
func FormatMessages(msgs []models.SlackMessage, limit int) string {
	sorted := append([]models.SlackMessage(nil), msgs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	if len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	lines := make([]string, 0, len(sorted))
	for _, m := range sorted {
		text := m.Text
		if utf8.RuneCountInString(text) > messageTextLimit {
			text = string([]rune(text)[:messageTextLimit])
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04"), m.UserName, text))
	}
	return strings.Join(lines, "\n")
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

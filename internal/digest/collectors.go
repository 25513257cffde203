package digest

import (
	"context"
	"time"

	"work-planner/internal/common/config"
	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/models"
	extracttodos "work-planner/internal/workers/ai/extract-todos"
	emailreader "work-planner/internal/workers/sources/email-reader"
	jirareader "work-planner/internal/workers/sources/jira-reader"
	slackreader "work-planner/internal/workers/sources/slack-reader"
)

// Window is the slice of time and the team a run looks at.
type Window struct {
	TeamKey  string
	Team     config.TeamConfig
	Since    time.Time
	DaysBack int
}

// Activity collects the raw records read during a run so the summaries and
// the report can reuse them.
type Activity struct {
	Emails   []models.EmailMessage
	Issues   []models.JiraIssue
	Channels []models.SlackChannelActivity
}

// Collector reads one source and extracts its action items. Failures are
// returned inside the result.
type Collector interface {
	Collect(ctx context.Context, w Window, act *Activity) models.SourceResult
}

type EmailReader interface {
	Execute(ctx context.Context, input *emailreader.Input) (*emailreader.Output, error)
}

type JiraReader interface {
	Execute(ctx context.Context, input *jirareader.Input) (*jirareader.Output, error)
}

type SlackReader interface {
	Execute(ctx context.Context, input *slackreader.Input) (*slackreader.Output, error)
	Link(m models.SlackMessage) string
}

type EmailCollector struct {
	Reader    EmailReader
	Extractor *extracttodos.Service
}

func (c *EmailCollector) Collect(ctx context.Context, w Window, act *Activity) models.SourceResult {
	if !c.Extractor.Enabled(models.SourceEmail) {
		return disabled(models.SourceEmail)
	}
	out, err := c.Reader.Execute(ctx, &emailreader.Input{Since: w.Since})
	if err != nil {
		return models.FailedSource(models.SourceEmail, err)
	}
	act.Emails = out.Messages
	return c.Extractor.ExtractEmail(ctx, out.Messages)
}

type JiraCollector struct {
	Reader    JiraReader
	Extractor *extracttodos.Service
}

func (c *JiraCollector) Collect(ctx context.Context, w Window, act *Activity) models.SourceResult {
	if !c.Extractor.Enabled(models.SourceJira) || w.Team.Jira.Project == "" {
		return disabled(models.SourceJira)
	}
	out, err := c.Reader.Execute(ctx, &jirareader.Input{
		Project:      w.Team.Jira.Project,
		AssignedTeam: w.Team.Jira.AssignedTeam,
		Statuses:     w.Team.Jira.Statuses,
		UpdatedSince: w.Since,
	})
	if err != nil {
		return models.FailedSource(models.SourceJira, err)
	}
	act.Issues = out.Issues
	return c.Extractor.ExtractJira(ctx, out.Issues)
}

type SlackCollector struct {
	Reader    SlackReader
	Extractor *extracttodos.Service
}

func (c *SlackCollector) Collect(ctx context.Context, w Window, act *Activity) models.SourceResult {
	if !c.Extractor.Enabled(models.SourceSlack) || len(w.Team.SlackChannels) == 0 {
		return disabled(models.SourceSlack)
	}
	channels := make([]slackreader.Channel, 0, len(w.Team.SlackChannels))
	for _, ch := range w.Team.SlackChannels {
		channels = append(channels, slackreader.Channel{ID: ch.ID, Name: ch.Name})
	}
	out, err := c.Reader.Execute(ctx, &slackreader.Input{Channels: channels, Since: w.Since})
	if err != nil {
		return models.FailedSource(models.SourceSlack, err)
	}
	act.Channels = out.Channels
	return c.Extractor.ExtractSlack(ctx, out.Messages(), c.Reader.Link)
}

func disabled(src models.Source) models.SourceResult {
	return models.FailedSource(src, apperrors.NewSourceDisabledError(string(src)))
}

package extracttodos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/llm"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
	"work-planner/internal/models"
)

const dateLayout = "2006-01-02 15:04"

type ServiceDependencies struct {
	Generator llm.Generator
	Logger    logger.Logger
}

// Service turns raw source records into action items, one model call per
// record.
type Service struct {
	config    *Config
	generator llm.Generator
	prompts   *prompts
	logger    logger.Logger
}

func NewService(cfg *Config, deps ServiceDependencies) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("todo extraction: %v", err))
	}
	if deps.Generator == nil {
		return nil, apperrors.NewConfigInvalidError("todo extraction: generator is required")
	}
	p, err := newPrompts(cfg)
	if err != nil {
		return nil, apperrors.NewConfigInvalidError(err.Error())
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config:    cfg,
		generator: deps.Generator,
		prompts:   p,
		logger:    log.Named("extract-todos"),
	}, nil
}

// Enabled reports whether a source takes part in extraction.
func (s *Service) Enabled(src models.Source) bool {
	return s.config.Sources[src].Enabled
}

func (s *Service) ExtractEmail(ctx context.Context, msgs []models.EmailMessage) models.SourceResult {
	items := make([]rawItem, 0, len(msgs))
	for _, m := range msgs {
		date := m.Date.Format(dateLayout)
		if m.Date.IsZero() {
			date = "Unknown"
		}
		items = append(items, rawItem{
			ID: fmt.Sprintf("uid:%d", m.UID),
			Data: EmailPromptData{
				From:    m.From,
				Subject: m.Subject,
				Date:    date,
				Body:    truncate(m.Body, emailBodyLimit),
			},
			Metadata: map[string]string{
				"from":    m.From,
				"subject": m.Subject,
				"date":    date,
			},
		})
	}
	return s.extract(ctx, models.SourceEmail, items)
}

func (s *Service) ExtractJira(ctx context.Context, issues []models.JiraIssue) models.SourceResult {
	cfg := s.config.Sources[models.SourceJira]
	items := make([]rawItem, 0, len(issues))
	for _, is := range issues {
		description := "Description analysis disabled"
		if cfg.AnalyzeDescriptions {
			description = truncate(is.Description, jiraDescriptionLimit)
		}
		comments := "No comments"
		if cfg.AnalyzeComments && len(is.Comments) > 0 {
			comments = formatComments(is.Comments)
		}
		items = append(items, rawItem{
			ID: is.Key,
			Data: JiraPromptData{
				IssueKey:    is.Key,
				Summary:     is.Summary,
				Status:      is.Status,
				Assignee:    is.Assignee,
				Priority:    is.Priority,
				Description: description,
				Comments:    comments,
			},
			Metadata: map[string]string{
				"issue_key":    is.Key,
				"issue_link":   is.URL,
				"issue_status": is.Status,
				"assignee":     is.Assignee,
				"priority":     is.Priority,
			},
		})
	}
	return s.extract(ctx, models.SourceJira, items)
}

// ExtractSlack analyzes chat messages. link may be nil.
func (s *Service) ExtractSlack(ctx context.Context, msgs []models.SlackMessage, link func(models.SlackMessage) string) models.SourceResult {
	if s.config.Sources[models.SourceSlack].MentionsOnly {
		msgs = mentionsOnly(msgs)
	}
	items := make([]rawItem, 0, len(msgs))
	for _, m := range msgs {
		thread := m.ThreadContext
		if thread == "" {
			thread = "No thread"
		}
		date := m.Timestamp.Format(dateLayout)
		meta := map[string]string{
			"channel":    m.ChannelName,
			"channel_id": m.ChannelID,
			"sender":     m.UserName,
			"date":       date,
		}
		if link != nil {
			if l := link(m); l != "" {
				meta["message_link"] = l
			}
		}
		items = append(items, rawItem{
			ID: m.ChannelID + "/" + m.TS,
			Data: SlackPromptData{
				Channel:       m.ChannelName,
				Sender:        m.UserName,
				Date:          date,
				Message:       truncate(m.Text, slackMessageLimit),
				ThreadContext: thread,
			},
			Metadata: meta,
		})
	}
	return s.extract(ctx, models.SourceSlack, items)
}

// mentionsOnly keeps messages that mention someone or start a thread. When
// nothing matches, every message is kept.
func mentionsOnly(msgs []models.SlackMessage) []models.SlackMessage {
	var kept []models.SlackMessage
	for _, m := range msgs {
		if strings.Contains(m.Text, "@") || m.ThreadContext != "" {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return msgs
	}
	return kept
}

func (s *Service) extract(ctx context.Context, src models.Source, items []rawItem) models.SourceResult {
	if !s.Enabled(src) {
		return models.FailedSource(src, apperrors.NewSourceDisabledError(string(src)))
	}
	if len(items) > s.config.MaxItemsPerSource {
		items = items[:s.config.MaxItemsPerSource]
	}

	log := s.logger.WithFields(map[string]interface{}{"source": string(src)})
	weight := s.config.Sources[src].PriorityWeight
	result := models.SourceResult{Source: src, Items: []models.ActionItem{}}

	var failed int
	var lastErr error
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return models.FailedSource(src, err)
		}
		result.ItemsAnalyzed++

		found, err := s.analyze(ctx, src, item, log)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		for i := range found {
			found[i].PriorityWeight = weight
		}
		result.Items = append(result.Items, found...)
	}

	if len(items) > 0 && failed == len(items) {
		log.Error("Every model call failed for source", map[string]interface{}{
			"items": len(items),
			"error": lastErr.Error(),
		})
		return models.SourceResult{Source: src, ItemsAnalyzed: result.ItemsAnalyzed, Err: lastErr}
	}

	metrics.TodosExtracted.WithLabelValues(string(src)).Add(float64(len(result.Items)))
	log.Info("Extraction completed", map[string]interface{}{
		"analyzed": result.ItemsAnalyzed,
		"failed":   failed,
		"todos":    len(result.Items),
	})
	return result
}

// analyze runs one record through the model and applies the per-item
// confidence filter and cap.
func (s *Service) analyze(ctx context.Context, src models.Source, item rawItem, log logger.Logger) ([]models.ActionItem, error) {
	prompt, err := s.prompts.render(src, item.Data)
	if err != nil {
		log.Error("Prompt rendering failed", map[string]interface{}{"item": item.ID, "error": err.Error()})
		return nil, err
	}

	text, err := s.generator.Generate(ctx, "extract-"+string(src), prompt)
	if err != nil {
		log.Warn("Model call failed", map[string]interface{}{"item": item.ID, "error": err.Error()})
		return nil, err
	}

	report, err := ParseCandidates(text)
	if err != nil {
		metrics.CandidatesRejected.WithLabelValues(string(src), "malformed_response").Inc()
		fields := map[string]interface{}{"item": item.ID, "error": err.Error()}
		var se *apperrors.StandardError
		if errors.As(err, &se) {
			fields["raw"] = se.Metadata["raw"]
		}
		log.Warn("Malformed model response", fields)
		return nil, err
	}

	for _, r := range report.Rejected {
		metrics.CandidatesRejected.WithLabelValues(string(src), "invalid_entry").Inc()
		log.Warn("Rejected model candidate", map[string]interface{}{
			"item":   item.ID,
			"index":  r.Index,
			"reason": r.Reason,
		})
	}

	var out []models.ActionItem
	for _, c := range report.Candidates {
		if c.Clamped {
			log.Debug("Confidence clamped into [0,1]", map[string]interface{}{"item": item.ID, "description": c.Description})
		}
		if c.OriginalUrgency != "" && string(c.Urgency) != strings.ToLower(strings.TrimSpace(c.OriginalUrgency)) {
			log.Warn("Unknown urgency treated as low", map[string]interface{}{"item": item.ID, "urgency": c.OriginalUrgency})
		}
		if c.Confidence < s.config.ConfidenceThreshold {
			metrics.CandidatesRejected.WithLabelValues(string(src), "below_threshold").Inc()
			continue
		}
		if len(out) >= s.config.MaxTodosPerItem {
			metrics.CandidatesRejected.WithLabelValues(string(src), "over_item_cap").Inc()
			continue
		}
		out = append(out, models.ActionItem{
			Description:     c.Description,
			Urgency:         c.Urgency,
			Confidence:      c.Confidence,
			Deadline:        c.Deadline,
			Source:          src,
			Metadata:        copyMetadata(item.Metadata),
			OriginalUrgency: c.OriginalUrgency,
		})
	}
	return out, nil
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

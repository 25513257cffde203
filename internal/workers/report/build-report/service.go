package buildreport

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/logger"
	"work-planner/internal/models"
	aggregatetodos "work-planner/internal/workers/todos/aggregate-todos"
)

//go:embed templates/report.html
var templateFS embed.FS

type ServiceDependencies struct {
	Logger logger.Logger
}

// Service renders the daily report and its subject line. All dynamic text
// goes through html/template escaping.
type Service struct {
	config  *Config
	page    *htmltemplate.Template
	subject *texttemplate.Template
	logger  logger.Logger
}

func NewService(cfg *Config, deps ServiceDependencies) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("report: %v", err))
	}
	page, err := htmltemplate.ParseFS(templateFS, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	subject := texttemplate.Must(texttemplate.New("subject").Option("missingkey=error").Parse(cfg.SubjectTemplate))
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{config: cfg, page: page, subject: subject, logger: log.Named("build-report")}, nil
}

func (s *Service) Execute(_ context.Context, input *Input) (*Output, error) {
	if input.Team == "" {
		return nil, apperrors.NewValidationError("team is required")
	}
	date := input.Date.Format("2006-01-02")

	subject, err := s.Subject(input.Team, date)
	if err != nil {
		return nil, err
	}

	view := s.buildView(input)
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	rendered := 0
	for _, g := range view.Groups {
		rendered += len(g.Items)
	}
	s.logger.Info("Report rendered", map[string]interface{}{
		"team":    input.Team,
		"bytes":   buf.Len(),
		"tickets": len(view.Tickets),
		"items":   rendered,
	})
	return &Output{Subject: subject, HTML: buf.String(), ItemsRendered: rendered}, nil
}

// Subject renders the configured subject template.
func (s *Service) Subject(team, date string) (string, error) {
	var buf bytes.Buffer
	if err := s.subject.Execute(&buf, struct{ Team, Date string }{team, date}); err != nil {
		return "", fmt.Errorf("render subject: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (s *Service) buildView(input *Input) pageView {
	generated := input.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	v := pageView{
		AppName:     s.config.AppName,
		RunID:       input.RunID,
		Team:        strings.ToUpper(input.Team),
		Date:        input.Date.Format("2006-01-02"),
		GeneratedAt: generated.Format("2006-01-02 15:04:05"),
		Executive:   "AI analysis not available",
		TicketTotal: len(input.Issues),
	}
	if input.Summary != nil {
		v.Executive = input.Summary.Executive
		v.Channels = input.Summary.Channels
	}

	issues := input.Issues
	if len(issues) > s.config.MaxTicketRows {
		v.TicketsHidden = len(issues) - s.config.MaxTicketRows
		issues = issues[:s.config.MaxTicketRows]
	}
	for _, is := range issues {
		v.Tickets = append(v.Tickets, ticketRow{
			Key:      is.Key,
			URL:      is.URL,
			Owner:    is.Assignee,
			Summary:  is.Summary,
			Status:   is.Status,
			Priority: is.Priority,
			Updated:  formatUpdated(is.Updated),
		})
	}

	if input.Todos == nil {
		return v
	}
	v.AnalysisPeriod = input.Todos.AnalysisPeriod
	v.TodoTotal = input.Todos.Total()
	for _, u := range models.Urgencies {
		items := input.Todos.ByUrgency[u]
		if len(items) == 0 {
			continue
		}
		g := urgencyGroup{Label: strings.ToUpper(string(u)), Color: urgencyColors[u], Count: len(items)}
		if len(items) > s.config.MaxItemsPerUrgency {
			g.Hidden = len(items) - s.config.MaxItemsPerUrgency
			items = items[:s.config.MaxItemsPerUrgency]
		}
		for _, it := range items {
			g.Items = append(g.Items, newItemView(it))
		}
		v.Groups = append(v.Groups, g)
	}

	for _, src := range models.Sources {
		st, ok := input.Todos.SourceStatus[src]
		if !ok {
			continue
		}
		v.Sources = append(v.Sources, sourceRow{
			Label:         src.Label(),
			Status:        statusLabel(st),
			TodosFound:    st.TodosFound,
			ItemsAnalyzed: st.ItemsAnalyzed,
			Error:         st.Error,
		})
	}
	for _, e := range input.Todos.Errors {
		v.Errors = append(v.Errors, e.String())
	}
	return v
}

func newItemView(it models.ActionItem) itemView {
	deadline := it.Deadline
	if deadline == "" {
		deadline = "No deadline"
	}
	detail, link := sourceContext(it)
	return itemView{
		Description: it.Description,
		Deadline:    deadline,
		Confidence:  fmt.Sprintf("%.2f", it.Confidence),
		Source:      it.Source.Label(),
		Context:     detail,
		Link:        link,
	}
}

// sourceContext describes where an item came from using its metadata.
func sourceContext(it models.ActionItem) (string, string) {
	m := it.Metadata
	switch it.Source {
	case models.SourceEmail:
		return fmt.Sprintf("From: %s | Subject: %s", clip(valueOr(m["from"], "Unknown"), 50), clip(valueOr(m["subject"], "No subject"), 60)), ""
	case models.SourceJira:
		return fmt.Sprintf("%s (%s) | Assignee: %s", m["issue_key"], valueOr(m["issue_status"], "Unknown"), valueOr(m["assignee"], "Unassigned")), m["issue_link"]
	case models.SourceSlack:
		return fmt.Sprintf("#%s | %s | %s", m["channel"], valueOr(m["sender"], "Unknown"), m["date"]), m["message_link"]
	default:
		return "", ""
	}
}

func statusLabel(st aggregatetodos.SourceStatus) string {
	switch {
	case st.Skipped:
		return "Skipped"
	case st.Success:
		return "OK"
	default:
		return "Failed"
	}
}

func formatUpdated(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package jirareader

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "work-planner/internal/common/errors"
	httpclient "work-planner/internal/common/http"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
	"work-planner/internal/models"
)

const (
	SourceName = "jira"

	jiraTimeLayout = "2006-01-02T15:04:05.000-0700"
	searchFields   = "summary,status,assignee,priority,issuetype,updated,description,comment"
)

type ServiceDependencies struct {
	HTTPClient *httpclient.Client
	Logger     logger.Logger
}

type Service struct {
	config *Config
	http   *httpclient.Client
	logger logger.Logger
}

func NewService(cfg *Config, deps ServiceDependencies) *Service {
	hc := deps.HTTPClient
	if hc == nil {
		hc = httpclient.NewClient(cfg.Timeout)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: cfg,
		http:   hc,
		logger: log.WithFields(map[string]interface{}{"source": SourceName}),
	}
}

// Execute runs one JQL search and parses the issues into typed records.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.config.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("jira: %v", err))
	}

	jql := BuildJQL(input)
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(s.config.MaxResults))
	q.Set("fields", searchFields)

	headers := map[string]string{"Authorization": "Bearer " + s.config.Token}

	var resp searchResponse
	if err := s.http.GetJSON(ctx, s.config.URL+"/rest/api/2/search?"+q.Encode(), headers, &resp); err != nil {
		metrics.SourceFetches.WithLabelValues(SourceName, "error").Inc()
		return nil, apperrors.NewSourceFetchFailedError(SourceName, err)
	}
	metrics.SourceFetches.WithLabelValues(SourceName, "success").Inc()

	out := &Output{JQL: jql, Total: resp.Total, Issues: make([]models.JiraIssue, 0, len(resp.Issues))}
	for _, raw := range resp.Issues {
		out.Issues = append(out.Issues, s.toIssue(raw))
	}

	s.logger.Info("Jira search completed", map[string]interface{}{
		"jql":    jql,
		"total":  resp.Total,
		"issues": len(out.Issues),
	})
	return out, nil
}

func (s *Service) toIssue(raw jiraIssue) models.JiraIssue {
	f := raw.Fields
	issue := models.JiraIssue{
		Key:      raw.Key,
		Summary:  f.Summary,
		Status:   nameOr(f.Status, "Unknown"),
		Priority: nameOr(f.Priority, "None"),
		Assignee: "Unassigned",
		URL:      IssueLink(s.config.URL, raw.Key),
	}
	if f.IssueType != nil {
		issue.IssueType = f.IssueType.Name
	}
	if f.Assignee != nil && f.Assignee.DisplayName != "" {
		issue.Assignee = f.Assignee.DisplayName
	}
	if f.Description != nil {
		issue.Description = *f.Description
	}
	if t, err := time.Parse(jiraTimeLayout, f.Updated); err == nil {
		issue.Updated = t
	}
	if f.Comment != nil {
		for _, c := range f.Comment.Comments {
			comment := models.JiraComment{Author: "Unknown", Body: c.Body}
			if c.Author != nil && c.Author.DisplayName != "" {
				comment.Author = c.Author.DisplayName
			}
			if t, err := time.Parse(jiraTimeLayout, c.Created); err == nil {
				comment.Created = t
			}
			issue.Comments = append(issue.Comments, comment)
		}
	}
	return issue
}

func nameOr(f *namedField, fallback string) string {
	if f == nil || f.Name == "" {
		return fallback
	}
	return f.Name
}

// IssueLink is the browse URL of an issue.
func IssueLink(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/browse/" + key
}

// BuildJQL joins the clauses present in input, newest updates first.
func BuildJQL(input *Input) string {
	var clauses []string
	if input.Project != "" {
		clauses = append(clauses, fmt.Sprintf("project = %s", quote(input.Project)))
	}
	if input.AssignedTeam != "" {
		clauses = append(clauses, fmt.Sprintf(`"AssignedTeam" = %s`, quote(input.AssignedTeam)))
	}
	if len(input.Statuses) > 0 {
		quoted := make([]string, len(input.Statuses))
		for i, st := range input.Statuses {
			quoted[i] = quote(st)
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(quoted, ", ")))
	}
	if !input.UpdatedSince.IsZero() {
		clauses = append(clauses, fmt.Sprintf("updated >= %s", quote(input.UpdatedSince.Format("2006-01-02"))))
	}
	return strings.TrimSpace(strings.Join(clauses, " AND ") + " ORDER BY updated DESC")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

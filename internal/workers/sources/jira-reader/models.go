package jirareader

import (
	"time"

	"work-planner/internal/models"
)

// Input selects issues. Empty fields add no clause to the query.
type Input struct {
	Project      string
	AssignedTeam string
	Statuses     []string
	UpdatedSince time.Time
}

type Output struct {
	JQL    string
	Total  int
	Issues []models.JiraIssue
}

type searchResponse struct {
	Total  int         `json:"total"`
	Issues []jiraIssue `json:"issues"`
}

type namedField struct {
	Name string `json:"name"`
}

type userField struct {
	DisplayName string `json:"displayName"`
}

type jiraComment struct {
	Author  *userField `json:"author"`
	Body    string     `json:"body"`
	Created string     `json:"created"`
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string      `json:"summary"`
		Status      *namedField `json:"status"`
		Assignee    *userField  `json:"assignee"`
		Priority    *namedField `json:"priority"`
		IssueType   *namedField `json:"issuetype"`
		Updated     string      `json:"updated"`
		Description *string     `json:"description"`
		Comment     *struct {
			Comments []jiraComment `json:"comments"`
		} `json:"comment"`
	} `json:"fields"`
}

package buildreport

import (
	"time"

	"work-planner/internal/models"
	summarizeactivity "work-planner/internal/workers/ai/summarize-activity"
	aggregatetodos "work-planner/internal/workers/todos/aggregate-todos"
)

type Input struct {
	RunID       string
	Team        string
	Date        time.Time
	GeneratedAt time.Time
	Summary     *summarizeactivity.Output
	Issues      []models.JiraIssue
	Todos       *aggregatetodos.Result
}

type Output struct {
	Subject       string `json:"subject"`
	HTML          string `json:"html"`
	ItemsRendered int    `json:"itemsRendered"`
}

var urgencyColors = map[models.Urgency]string{
	models.UrgencyCritical: "#dc3545",
	models.UrgencyHigh:     "#fd7e14",
	models.UrgencyMedium:   "#ffc107",
	models.UrgencyLow:      "#28a745",
}

type pageView struct {
	AppName        string
	RunID          string
	Team           string
	Date           string
	GeneratedAt    string
	AnalysisPeriod string
	Executive      string
	Channels       []summarizeactivity.ChannelSummary
	Tickets        []ticketRow
	TicketTotal    int
	TicketsHidden  int
	Groups         []urgencyGroup
	TodoTotal      int
	Sources        []sourceRow
	Errors         []string
}

type ticketRow struct {
	Key      string
	URL      string
	Owner    string
	Summary  string
	Status   string
	Priority string
	Updated  string
}

type urgencyGroup struct {
	Label  string
	Color  string
	Count  int
	Items  []itemView
	Hidden int
}

type itemView struct {
	Description string
	Deadline    string
	Confidence  string
	Source      string
	Context     string
	Link        string
}

type sourceRow struct {
	Label         string
	Status        string
	TodosFound    int
	ItemsAnalyzed int
	Error         string
}

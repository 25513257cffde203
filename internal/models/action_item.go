// internal/models/action_item.go
package models

import (
	"strings"
)

// Urgency is the coarse four-level priority the model assigns to an item.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Urgencies lists the levels from most to least urgent.
var Urgencies = []Urgency{UrgencyCritical, UrgencyHigh, UrgencyMedium, UrgencyLow}

// Rank orders urgencies for sorting: critical=0 through low=3. Anything
// unrecognized sorts after low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		return 4
	}
}

func (u Urgency) Valid() bool {
	return u.Rank() < 4
}

// ParseUrgency normalizes model output. The bool is false when raw was not
// one of the four levels, in which case low is returned.
func ParseUrgency(raw string) (Urgency, bool) {
	u := Urgency(strings.ToLower(strings.TrimSpace(raw)))
	if u.Valid() {
		return u, true
	}
	return UrgencyLow, false
}

// Source identifies where an action item came from.
type Source string

const (
	SourceEmail Source = "email"
	SourceJira  Source = "jira"
	SourceSlack Source = "slack"
)

// Sources is the fixed processing order of a run.
var Sources = []Source{SourceEmail, SourceJira, SourceSlack}

// Label is the capitalized name used in reports and error entries.
func (s Source) Label() string {
	switch s {
	case SourceEmail:
		return "Email"
	case SourceJira:
		return "Jira"
	case SourceSlack:
		return "Slack"
	default:
		return string(s)
	}
}

// ActionItem is a unit of suggested work extracted from one raw item.
type ActionItem struct {
	Description     string            `json:"description" yaml:"description"`
	Urgency         Urgency           `json:"urgency" yaml:"urgency"`
	Confidence      float64           `json:"confidence" yaml:"confidence"`
	Deadline        string            `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Source          Source            `json:"source" yaml:"source"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	OriginalUrgency string            `json:"originalUrgency,omitempty" yaml:"original_urgency,omitempty"`
	PriorityWeight  float64           `json:"priorityWeight,omitempty" yaml:"priority_weight,omitempty"`
}

// DedupeKey identifies items that describe the same work from the same source.
func (a ActionItem) DedupeKey() string {
	return string(a.Source) + "|" + strings.Join(strings.Fields(strings.ToLower(a.Description)), " ")
}

// SourceResult is the outcome of extracting one source. A failed source
// carries Err and no items.
type SourceResult struct {
	Source        Source       `json:"source"`
	Items         []ActionItem `json:"items"`
	ItemsAnalyzed int          `json:"itemsAnalyzed"`
	Err           error        `json:"-"`
}

func (r SourceResult) Success() bool {
	return r.Err == nil
}

// FailedSource builds the result of a source that produced nothing.
func FailedSource(source Source, err error) SourceResult {
	return SourceResult{Source: source, Err: err}
}

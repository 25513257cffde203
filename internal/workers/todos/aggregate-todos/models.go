package aggregatetodos

import "work-planner/internal/models"

// SourceStatus summarizes one source's contribution to a run.
type SourceStatus struct {
	Success       bool   `json:"success" yaml:"success"`
	Skipped       bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	TodosFound    int    `json:"todosFound" yaml:"todos_found"`
	ItemsAnalyzed int    `json:"itemsAnalyzed" yaml:"items_analyzed"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SourceError is the error entry recorded for a failed source.
type SourceError struct {
	Source  models.Source `json:"source" yaml:"source"`
	Code    string        `json:"code" yaml:"code"`
	Message string        `json:"message" yaml:"message"`
}

func (e SourceError) String() string {
	return e.Source.Label() + ": " + e.Message
}

// Result is the unified view over every source of a run.
type Result struct {
	Todos          []models.ActionItem                    `json:"todos" yaml:"todos"`
	ByUrgency      map[models.Urgency][]models.ActionItem `json:"groupedByUrgency" yaml:"grouped_by_urgency"`
	BySource       map[models.Source][]models.ActionItem  `json:"groupedBySource" yaml:"grouped_by_source"`
	UrgencyCounts  map[models.Urgency]int                 `json:"byUrgency" yaml:"by_urgency"`
	SourceCounts   map[models.Source]int                  `json:"bySource" yaml:"by_source"`
	SourceStatus   map[models.Source]SourceStatus         `json:"sourceResults" yaml:"source_results"`
	Errors         []SourceError                          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Duplicates     int                                    `json:"duplicatesRemoved" yaml:"duplicates_removed"`
	BelowThreshold int                                    `json:"belowThreshold" yaml:"below_threshold"`
	AnalysisPeriod string                                 `json:"analysisPeriod" yaml:"analysis_period"`
}

// Total is the number of action items in the unified list.
func (r *Result) Total() int {
	return len(r.Todos)
}

type Options struct {
	ConfidenceThreshold float64
	DaysBack            int
}

// internal/common/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "work_planner_source_fetch_total",
			Help: "Source fetch attempts by outcome",
		},
		[]string{"source", "status"},
	)

	TodosExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "work_planner_todos_extracted_total",
			Help: "Action items kept after the confidence filter",
		},
		[]string{"source"},
	)

	CandidatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "work_planner_candidates_rejected_total",
			Help: "Model candidates dropped during parsing or filtering",
		},
		[]string{"source", "reason"},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "work_planner_ai_requests_total",
			Help: "Generative API calls by purpose and outcome",
		},
		[]string{"purpose", "status"},
	)

	EmailSendAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "work_planner_email_send_attempts_total",
			Help: "Report delivery attempts",
		},
		[]string{"provider", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "work_planner_run_duration_seconds",
			Help:    "End-to-end duration of a team run",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"team"},
	)
)

// Push sends the default registry to a Pushgateway. A run is a short-lived
// process, so there is nothing to scrape.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

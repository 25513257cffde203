package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"work-planner/internal/common/config"
	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
	"work-planner/internal/common/observability"
	"work-planner/internal/models"
	summarizeactivity "work-planner/internal/workers/ai/summarize-activity"
	emailsend "work-planner/internal/workers/communication/email-send"
	buildreport "work-planner/internal/workers/report/build-report"
	aggregatetodos "work-planner/internal/workers/todos/aggregate-todos"
	"work-planner/pkg/registry"
)

type Summarizer interface {
	Execute(ctx context.Context, input *summarizeactivity.Input) *summarizeactivity.Output
}

type Reporter interface {
	Execute(ctx context.Context, input *buildreport.Input) (*buildreport.Output, error)
}

type Mailer interface {
	Execute(ctx context.Context, input *emailsend.Input) (*emailsend.Output, error)
}

// Alerter publishes a short failure notice. *aws.SNSClient satisfies it.
type Alerter interface {
	PublishAlert(ctx context.Context, topicARN, subject, message string) (string, error)
}

type Dependencies struct {
	Collectors    *registry.Registry[Collector]
	Summarizer    Summarizer
	Reporter      Reporter
	Mailer        Mailer
	Alerter       Alerter
	Observability *observability.Observability
	Logger        logger.Logger
	Now           func() time.Time
}

type RunOptions struct {
	DaysBack int
	DryRun   bool
}

// RunResult describes one "run for team X".
type RunResult struct {
	RunID     string                    `json:"runId"`
	Team      string                    `json:"team"`
	Todos     *aggregatetodos.Result    `json:"todos"`
	Summary   *summarizeactivity.Output `json:"summary,omitempty"`
	Report    *buildreport.Output       `json:"-"`
	Delivery  *emailsend.Output         `json:"delivery,omitempty"`
	Delivered bool                      `json:"delivered"`
	Duration  time.Duration             `json:"duration"`
}

// Runner drives a run: sources in registry order, aggregation, summaries,
// rendering and delivery. Sources run one after another.
type Runner struct {
	config *config.Config
	deps   Dependencies
	logger logger.Logger
	now    func() time.Time
}

func NewRunner(cfg *config.Config, deps Dependencies) (*Runner, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigInvalidError("runner: config is required")
	}
	if deps.Collectors == nil || deps.Collectors.Len() == 0 {
		return nil, apperrors.NewConfigInvalidError("runner: no source collectors registered")
	}
	if deps.Reporter == nil {
		return nil, apperrors.NewConfigInvalidError("runner: reporter is required")
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{config: cfg, deps: deps, logger: log.Named("runner"), now: now}, nil
}

// ExtractTodos collects every source and returns the aggregated action items
// without summarizing or sending anything.
func (r *Runner) ExtractTodos(ctx context.Context, team string, daysBack int) (*aggregatetodos.Result, error) {
	w, err := r.window(team, daysBack)
	if err != nil {
		return nil, err
	}
	todos, _ := r.collect(ctx, w, r.logger.WithFields(map[string]interface{}{"team": w.TeamKey}))
	return todos, nil
}

// Run performs the full report for one team. A delivery failure is returned
// together with the partial result.
func (r *Runner) Run(ctx context.Context, team string, opts RunOptions) (*RunResult, error) {
	start := r.now()
	w, err := r.window(team, opts.DaysBack)
	if err != nil {
		return nil, err
	}

	result := &RunResult{RunID: uuid.NewString(), Team: w.TeamKey}
	log := r.logger.WithFields(map[string]interface{}{"runId": result.RunID, "team": w.TeamKey})
	log.Info("Run started", map[string]interface{}{"daysBack": w.DaysBack, "dryRun": opts.DryRun})
	defer func() {
		result.Duration = r.now().Sub(start)
		metrics.RunDuration.WithLabelValues(w.TeamKey).Observe(result.Duration.Seconds())
	}()

	var act *Activity
	result.Todos, act = r.collect(ctx, w, log)

	date := start.Format("2006-01-02")
	stage := r.now()
	if r.deps.Summarizer != nil {
		result.Summary = r.deps.Summarizer.Execute(ctx, &summarizeactivity.Input{
			Team:     w.Team.Name,
			Date:     date,
			Channels: act.Channels,
			Issues:   act.Issues,
		})
	}
	r.deps.Observability.RecordStage(ctx, "summarize", r.now().Sub(stage), "success")

	stage = r.now()
	report, err := r.deps.Reporter.Execute(ctx, &buildreport.Input{
		RunID:       result.RunID,
		Team:        w.Team.Name,
		Date:        start,
		GeneratedAt: r.now(),
		Summary:     result.Summary,
		Issues:      act.Issues,
		Todos:       result.Todos,
	})
	if err != nil {
		r.deps.Observability.RecordStage(ctx, "report", r.now().Sub(stage), "error")
		return result, err
	}
	r.deps.Observability.RecordStage(ctx, "report", r.now().Sub(stage), "success")
	result.Report = report

	if opts.DryRun {
		log.Info("Dry run, report not sent", map[string]interface{}{
			"subject": report.Subject,
			"todos":   result.Todos.Total(),
		})
		return result, nil
	}

	if r.deps.Mailer == nil {
		return result, apperrors.NewConfigInvalidError("runner: no mailer configured")
	}
	stage = r.now()
	delivery, err := r.deps.Mailer.Execute(ctx, &emailsend.Input{
		To:      w.Team.Recipients,
		CC:      w.Team.CC,
		BCC:     w.Team.BCC,
		Subject: report.Subject,
		HTML:    report.HTML,
	})
	if err != nil {
		r.deps.Observability.RecordStage(ctx, "deliver", r.now().Sub(stage), "error")
		log.Error("Report delivery failed", map[string]interface{}{"error": err.Error()})
		r.alert(ctx, w, result, err, log)
		return result, err
	}
	r.deps.Observability.RecordStage(ctx, "deliver", r.now().Sub(stage), "success")

	result.Delivery = delivery
	result.Delivered = true
	log.Info("Run completed", map[string]interface{}{
		"todos":     result.Todos.Total(),
		"errors":    len(result.Todos.Errors),
		"messageId": delivery.MessageID,
		"attempts":  delivery.Attempts,
	})
	return result, nil
}

func (r *Runner) window(team string, daysBack int) (Window, error) {
	key, tc, ok := r.config.ResolveTeam(team)
	if !ok {
		return Window{}, apperrors.NewTeamNotFoundError(team)
	}
	if daysBack <= 0 {
		daysBack = r.config.Run.DaysBack
	}
	if daysBack <= 0 {
		daysBack = 1
	}
	if tc.Name == "" {
		tc.Name = key
	}
	return Window{
		TeamKey:  key,
		Team:     tc,
		Since:    r.now().Add(-time.Duration(daysBack) * 24 * time.Hour),
		DaysBack: daysBack,
	}, nil
}

func (r *Runner) collect(ctx context.Context, w Window, log logger.Logger) (*aggregatetodos.Result, *Activity) {
	act := &Activity{}
	var results []models.SourceResult

	_ = r.deps.Collectors.Each(func(name string, c Collector) error {
		start := r.now()
		res := c.Collect(ctx, w, act)
		if res.Source == "" {
			res.Source = models.Source(name)
		}

		status := "success"
		switch {
		case res.Success():
		case apperrors.ExtractCode(res.Err) == apperrors.ErrCodeSourceDisabled:
			status = "skipped"
		default:
			status = "error"
			log.Warn("Source failed", map[string]interface{}{
				"source": name,
				"code":   string(apperrors.ExtractCode(res.Err)),
				"error":  res.Err.Error(),
			})
		}
		r.deps.Observability.RecordStage(ctx, "collect-"+name, r.now().Sub(start), status)
		results = append(results, res)
		return nil
	})

	todos := aggregatetodos.Aggregate(results, aggregatetodos.Options{
		ConfidenceThreshold: r.config.TodoExtraction.ConfidenceThreshold,
		DaysBack:            w.DaysBack,
	})
	log.Info("Action items aggregated", map[string]interface{}{
		"total":      todos.Total(),
		"duplicates": todos.Duplicates,
		"errors":     len(todos.Errors),
	})
	return todos, act
}

func (r *Runner) alert(ctx context.Context, w Window, result *RunResult, cause error, log logger.Logger) {
	topic := r.config.AWS.SNS.AlertTopicARN
	if r.deps.Alerter == nil || topic == "" {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Daily report for team %s was not delivered.\n", w.Team.Name)
	fmt.Fprintf(&b, "Run: %s\n", result.RunID)
	fmt.Fprintf(&b, "Error: %s\n", cause.Error())
	if result.Todos != nil {
		fmt.Fprintf(&b, "Action items found: %d\n", result.Todos.Total())
		for _, e := range result.Todos.Errors {
			fmt.Fprintf(&b, "Source error: %s\n", e.String())
		}
	}
	if _, err := r.deps.Alerter.PublishAlert(ctx, topic, "work-planner delivery failed: "+w.Team.Name, b.String()); err != nil {
		log.Warn("Failed to publish alert", map[string]interface{}{"error": err.Error()})
	}
}

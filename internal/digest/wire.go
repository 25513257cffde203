package digest

import (
	"context"

	awsclient "work-planner/internal/common/aws"
	"work-planner/internal/common/config"
	"work-planner/internal/common/llm"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/observability"
	"work-planner/internal/models"
	extracttodos "work-planner/internal/workers/ai/extract-todos"
	summarizeactivity "work-planner/internal/workers/ai/summarize-activity"
	emailsend "work-planner/internal/workers/communication/email-send"
	buildreport "work-planner/internal/workers/report/build-report"
	emailreader "work-planner/internal/workers/sources/email-reader"
	jirareader "work-planner/internal/workers/sources/jira-reader"
	slackreader "work-planner/internal/workers/sources/slack-reader"
	"work-planner/pkg/registry"
)

// BuildOptions overrides pieces of the production wiring. Zero values
// select the configured implementation.
type BuildOptions struct {
	Logger        logger.Logger
	Generator     llm.Generator
	Cache         slackreader.Cache
	Sender        emailsend.Sender
	Observability *observability.Observability
	SkipMailer    bool
}

// Build wires every collaborator of a Runner from cfg.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Runner, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	gen := opts.Generator
	if gen == nil {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GenAI)
		if err != nil {
			return nil, err
		}
		gen = gemini
	}

	extractor, err := extracttodos.NewService(extracttodos.FromAppConfig(cfg.TodoExtraction),
		extracttodos.ServiceDependencies{Generator: gen, Logger: log})
	if err != nil {
		return nil, err
	}

	collectors := registry.New[Collector]()
	collectors.MustRegister(string(models.SourceEmail), &EmailCollector{
		Reader:    emailreader.NewService(emailreader.FromAppConfig(cfg.Email.IMAP), emailreader.ServiceDependencies{Logger: log}),
		Extractor: extractor,
	})
	collectors.MustRegister(string(models.SourceJira), &JiraCollector{
		Reader:    jirareader.NewService(jirareader.FromAppConfig(cfg.Jira), jirareader.ServiceDependencies{Logger: log}),
		Extractor: extractor,
	})
	collectors.MustRegister(string(models.SourceSlack), &SlackCollector{
		Reader: slackreader.NewService(slackreader.FromAppConfig(cfg.Slack), slackreader.ServiceDependencies{
			Cache:  opts.Cache,
			Logger: log,
		}),
		Extractor: extractor,
	})

	summarizer, err := summarizeactivity.NewService(summarizeactivity.FromAppConfig(cfg.Summary),
		summarizeactivity.ServiceDependencies{Generator: gen, Logger: log})
	if err != nil {
		return nil, err
	}
	reporter, err := buildreport.NewService(buildreport.FromAppConfig(cfg), buildreport.ServiceDependencies{Logger: log})
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		Collectors:    collectors,
		Summarizer:    summarizer,
		Reporter:      reporter,
		Observability: opts.Observability,
		Logger:        log,
	}
	if !opts.SkipMailer {
		mailer, err := NewMailer(ctx, cfg, opts.Sender, log)
		if err != nil {
			return nil, err
		}
		deps.Mailer = mailer
	}
	if cfg.AWS.SNS.AlertTopicARN != "" {
		sns, err := awsclient.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			log.Warn("SNS alerts disabled", map[string]interface{}{"error": err.Error()})
		} else {
			deps.Alerter = sns
		}
	}
	return NewRunner(cfg, deps)
}

// NewMailer builds the delivery service for the configured provider.
func NewMailer(ctx context.Context, cfg *config.Config, sender emailsend.Sender, log logger.Logger) (*emailsend.Service, error) {
	mcfg := emailsend.FromAppConfig(cfg)
	if sender == nil && mcfg.Provider == emailsend.ProviderSES {
		ses, err := awsclient.NewSESClient(ctx, mcfg.Region)
		if err != nil {
			return nil, err
		}
		sender = emailsend.NewSESSender(ses)
	}
	return emailsend.NewService(mcfg, emailsend.ServiceDependencies{Sender: sender, Logger: log})
}

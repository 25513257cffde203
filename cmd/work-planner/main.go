// cmd/work-planner/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"work-planner/internal/common/config"
	"work-planner/internal/common/database"
	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
	"work-planner/internal/common/observability"
	"work-planner/internal/digest"
)

var Version = "dev"

// app carries what every command needs once config is loaded.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	log    logger.Logger
	obs    *observability.Observability
	redis  *database.RedisClient
	errors *apperrors.ErrorHandler
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:           "work-planner",
		Short:         "Collect team activity, extract action items and email a daily report",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")

	root.AddCommand(reportCmd(a), todosCmd(a), checkSMTPCmd(a), teamsCmd(a))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd, err := root.ExecuteContextC(ctx)
	stop()

	code := 0
	if err != nil {
		operation := root.Name()
		if cmd != nil {
			operation = cmd.Name()
		}
		code = a.handle(operation, err)
	}
	a.close()
	os.Exit(code)
}

// setup loads config and builds the ambient stack. It is called by each
// command rather than a PersistentPreRun so --help works without config.
func (a *app) setup(ctx context.Context) error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := a.cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.NewStructured(level, a.cfg.Logging.Format).With(map[string]interface{}{
		"app":         a.cfg.App.Name,
		"environment": a.cfg.App.Environment,
	})
	a.errors = apperrors.NewErrorHandler(a.log)

	a.obs, err = observability.New(a.cfg.App.Name)
	if err != nil {
		a.log.Warn("OpenTelemetry meter disabled", map[string]interface{}{"error": err.Error()})
	}

	if a.cfg.Redis.Enabled {
		a.redis = a.connectRedis(ctx)
	}
	return nil
}

func (a *app) connectRedis(ctx context.Context) *database.RedisClient {
	client := database.NewRedis(a.cfg.Redis)
	err := retryWithBackoff(func() error {
		return client.Ping(ctx)
	}, 3, 500*time.Millisecond, a.log, "Redis connection")
	if err != nil {
		a.log.Warn("Continuing without Slack cache", map[string]interface{}{"error": err.Error()})
		client.Close()
		return nil
	}
	return client
}

// buildRunner wires the digest runner; a nil redis client must not reach
// the interface field.
func (a *app) buildRunner(ctx context.Context, skipMailer bool) (*digest.Runner, error) {
	opts := digest.BuildOptions{
		Logger:        a.log,
		Observability: a.obs,
		SkipMailer:    skipMailer,
	}
	if a.redis != nil {
		opts.Cache = a.redis
	}
	return digest.Build(ctx, a.cfg, opts)
}

func (a *app) pushMetrics(ctx context.Context) {
	if a.cfg == nil || a.cfg.Metrics.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
		a.log.Warn("Metrics push failed", map[string]interface{}{"error": err.Error()})
	}
}

func (a *app) handle(operation string, err error) int {
	if a.errors == nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if apperrors.GetErrorCategory(apperrors.ExtractCode(err)) == "CONFIG" {
			return 2
		}
		return 1
	}
	return a.errors.Handle(operation, err)
}

func (a *app) close() {
	if a.obs != nil {
		_ = a.obs.Shutdown(context.Background())
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

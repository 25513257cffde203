package emailreader

import (
	"context"
	"fmt"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
	"work-planner/internal/models"
)

const SourceName = "email"

type ServiceDependencies struct {
	Fetcher Fetcher
	Logger  logger.Logger
}

type Service struct {
	config  *Config
	fetcher Fetcher
	logger  logger.Logger
}

func NewService(cfg *Config, deps ServiceDependencies) *Service {
	fetcher := deps.Fetcher
	if fetcher == nil {
		fetcher = NewIMAPFetcher(cfg)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config:  cfg,
		fetcher: fetcher,
		logger:  log.WithFields(map[string]interface{}{"source": SourceName}),
	}
}

// Execute fetches inbox messages since input.Since and reduces each to its
// text body. Messages whose MIME structure cannot be read are skipped.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.config.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("email: %v", err))
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	raws, err := s.fetcher.Fetch(ctx, input.Since, s.config.MaxMessages)
	if err != nil {
		metrics.SourceFetches.WithLabelValues(SourceName, "error").Inc()
		return nil, apperrors.NewSourceFetchFailedError(SourceName, err)
	}
	metrics.SourceFetches.WithLabelValues(SourceName, "success").Inc()

	out := &Output{Messages: make([]models.EmailMessage, 0, len(raws))}
	for _, raw := range raws {
		body, err := ExtractText(raw.Body)
		if err != nil {
			out.Skipped++
			s.logger.Warn("Skipping unreadable message", map[string]interface{}{
				"uid":     raw.UID,
				"subject": raw.Subject,
				"error":   err.Error(),
			})
			continue
		}
		subject := raw.Subject
		if subject == "" {
			subject = "No subject"
		}
		from := raw.From
		if from == "" {
			from = "Unknown"
		}
		out.Messages = append(out.Messages, models.EmailMessage{
			UID:     raw.UID,
			From:    from,
			Subject: subject,
			Date:    raw.Date,
			Body:    body,
		})
	}

	s.logger.Info("Inbox read", map[string]interface{}{
		"messages": len(out.Messages),
		"skipped":  out.Skipped,
	})
	return out, nil
}

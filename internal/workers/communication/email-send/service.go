package emailsend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
)

// Service sends the report with a fixed number of attempts and a fixed
// delay between them.
type Service struct {
	config *Config
	sender Sender
	logger logger.Logger
	now    func() time.Time
}

func NewService(cfg *Config, deps ServiceDependencies) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("email: %v", err))
	}
	sender := deps.Sender
	if sender == nil {
		if cfg.Provider != ProviderSMTP {
			return nil, apperrors.NewConfigInvalidError("email: sender is required for provider " + cfg.Provider)
		}
		sender = NewSMTPSender(cfg.SMTP)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: cfg,
		sender: sender,
		logger: log.Named("email-send"),
		now:    time.Now,
	}, nil
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateRecipients(input); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	msg := &Message{
		From:      s.config.From,
		FromName:  s.config.FromName,
		To:        trimAll(input.To),
		CC:        trimAll(input.CC),
		BCC:       trimAll(input.BCC),
		Subject:   input.Subject,
		HTML:      input.HTML,
		MessageID: s.messageID(),
		Date:      s.now(),
	}
	provider := s.sender.Name()
	log := s.logger.WithFields(map[string]interface{}{
		"provider":   provider,
		"recipients": len(msg.Recipients()),
		"subject":    msg.Subject,
	})

	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		id, err := s.sender.Send(ctx, msg)
		if err == nil {
			metrics.EmailSendAttempts.WithLabelValues(provider, "success").Inc()
			log.Info("Email sent", map[string]interface{}{"attempt": attempt, "messageId": id})
			return &Output{
				Success:   true,
				MessageID: id,
				Provider:  provider,
				Attempts:  attempt,
				SentAt:    s.now(),
			}, nil
		}

		lastErr = err
		metrics.EmailSendAttempts.WithLabelValues(provider, "failure").Inc()
		log.Warn("Send attempt failed", map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": s.config.MaxAttempts,
			"error":       err.Error(),
		})
		if attempt == s.config.MaxAttempts {
			break
		}

		select {
		case <-time.After(s.config.RetryDelay):
		case <-ctx.Done():
			return nil, s.failure(provider, attempt, ctx.Err())
		}
	}

	log.Error("Email delivery failed", map[string]interface{}{
		"attempts": s.config.MaxAttempts,
		"error":    lastErr.Error(),
	})
	return nil, s.failure(provider, s.config.MaxAttempts, lastErr)
}

// CheckConnection verifies SMTP connectivity and credentials.
func (s *Service) CheckConnection(ctx context.Context) error {
	checker, ok := s.sender.(interface {
		CheckConnection(ctx context.Context) error
	})
	if !ok {
		return fmt.Errorf("provider %s does not support connection checks", s.sender.Name())
	}
	return checker.CheckConnection(ctx)
}

func (s *Service) failure(provider string, attempts int, err error) error {
	if provider == ProviderSMTP {
		return apperrors.NewSMTPSendFailedError(attempts, err)
	}
	return apperrors.NewEmailSendFailedError(provider, attempts, err)
}

func (s *Service) messageID() string {
	domain := "work-planner.local"
	if at := strings.LastIndex(s.config.From, "@"); at >= 0 && at < len(s.config.From)-1 {
		domain = s.config.From[at+1:]
	}
	return uuid.NewString() + "@" + domain
}

package slackreader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"work-planner/internal/common/database"
	apperrors "work-planner/internal/common/errors"
	httpclient "work-planner/internal/common/http"
	"work-planner/internal/common/logger"
	"work-planner/internal/common/metrics"
	"work-planner/internal/models"
)

const SourceName = "slack"

// Cache stores channel history between runs. *database.RedisClient
// satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type ServiceDependencies struct {
	HTTPClient *httpclient.Client
	Cache      Cache
	Logger     logger.Logger
}

type Service struct {
	config *Config
	http   *httpclient.Client
	cache  Cache
	logger logger.Logger
}

func NewService(cfg *Config, deps ServiceDependencies) *Service {
	hc := deps.HTTPClient
	if hc == nil {
		hc = httpclient.NewClient(cfg.Timeout)
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: cfg,
		http:   hc,
		cache:  deps.Cache,
		logger: log.WithFields(map[string]interface{}{"source": SourceName}),
	}
}

// Execute reads every channel in turn. A channel that fails is recorded in
// FailedChannels; the call fails only when no channel could be read.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.config.Validate(); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("slack: %v", err))
	}

	out := &Output{FailedChannels: map[string]string{}}
	var lastErr error

	for _, ch := range input.Channels {
		msgs, err := s.channelHistory(ctx, ch, input.Since)
		if err != nil {
			lastErr = err
			out.FailedChannels[ch.Name] = err.Error()
			s.logger.Warn("Failed to read channel", map[string]interface{}{
				"channel": ch.Name,
				"error":   err.Error(),
			})
			continue
		}
		out.Channels = append(out.Channels, models.SlackChannelActivity{
			ChannelID:   ch.ID,
			ChannelName: ch.Name,
			Messages:    msgs,
		})
	}

	if len(input.Channels) > 0 && len(out.Channels) == 0 {
		metrics.SourceFetches.WithLabelValues(SourceName, "error").Inc()
		return nil, apperrors.NewSourceFetchFailedError(SourceName, lastErr)
	}

	metrics.SourceFetches.WithLabelValues(SourceName, "success").Inc()
	s.logger.Info("Slack history read", map[string]interface{}{
		"channels": len(out.Channels),
		"failed":   len(out.FailedChannels),
		"messages": len(out.Messages()),
	})
	return out, nil
}

func (s *Service) channelHistory(ctx context.Context, ch Channel, since time.Time) ([]models.SlackMessage, error) {
	key := cacheKey(ch.ID, since)
	if s.cache != nil {
		var cached []models.SlackMessage
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			s.logger.Debug("Using cached channel history", map[string]interface{}{"channel": ch.Name})
			return cached, nil
		}
		if !errors.Is(err, database.ErrCacheMiss) {
			s.logger.Warn("Cache read failed", map[string]interface{}{"channel": ch.Name, "error": err.Error()})
		}
	}

	msgs, err := s.fetch(ctx, ch, since)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, msgs, s.config.CacheTTL); err != nil {
			s.logger.Warn("Cache write failed", map[string]interface{}{"channel": ch.Name, "error": err.Error()})
		}
	}
	return msgs, nil
}

func (s *Service) fetch(ctx context.Context, ch Channel, since time.Time) ([]models.SlackMessage, error) {
	q := url.Values{}
	q.Set("channel", ch.ID)
	q.Set("limit", strconv.Itoa(s.config.MaxMessages))
	if !since.IsZero() {
		q.Set("oldest", strconv.FormatInt(since.Unix(), 10))
	}

	headers := map[string]string{"Authorization": "Bearer " + s.config.Token}
	if s.config.Cookie != "" {
		headers["Cookie"] = "d=" + s.config.Cookie
	}

	var resp historyResponse
	if err := s.http.GetJSON(ctx, s.config.BaseURL+"/conversations.history?"+q.Encode(), headers, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("slack api error: %s", resp.Error)
	}

	msgs := make([]models.SlackMessage, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m.Type != "" && m.Type != "message" {
			continue
		}
		if m.Subtype == "channel_join" || m.Subtype == "channel_leave" {
			continue
		}
		ts, err := ParseTS(m.TS)
		if err != nil {
			s.logger.Debug("Skipping message with bad timestamp", map[string]interface{}{"ts": m.TS})
			continue
		}
		if !since.IsZero() && ts.Before(since) {
			continue
		}
		msgs = append(msgs, s.toMessage(ch, m, ts))
	}
	return msgs, nil
}

func (s *Service) toMessage(ch Channel, m slackMessage, ts time.Time) models.SlackMessage {
	userName := s.config.Users[m.User]
	if userName == "" {
		userName = m.User
	}
	if userName == "" {
		userName = "bot"
	}
	msg := models.SlackMessage{
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		UserID:      m.User,
		UserName:    userName,
		Text:        CleanText(m.Text, s.config.Users),
		Timestamp:   ts,
		TS:          m.TS,
		ThreadTS:    m.ThreadTS,
		ReplyCount:  m.ReplyCount,
	}
	if m.ReplyCount > 0 {
		msg.ThreadContext = fmt.Sprintf("Thread with %d replies", m.ReplyCount)
	}
	return msg
}

// Link returns the permalink of a message, or "" without a workspace URL.
func (s *Service) Link(m models.SlackMessage) string {
	return MessageLink(s.config.WorkspaceURL, m.ChannelID, m.TS)
}

func cacheKey(channelID string, since time.Time) string {
	return fmt.Sprintf("slack:%s:%d", channelID, since.Truncate(time.Hour).Unix())
}

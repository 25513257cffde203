package slackreader

import (
	"time"

	"work-planner/internal/models"
)

type Channel struct {
	ID   string
	Name string
}

type Input struct {
	Channels []Channel
	Since    time.Time
}

type Output struct {
	Channels       []models.SlackChannelActivity
	FailedChannels map[string]string
}

// Messages flattens all channels, newest first within each channel.
func (o *Output) Messages() []models.SlackMessage {
	var out []models.SlackMessage
	for _, ch := range o.Channels {
		out = append(out, ch.Messages...)
	}
	return out
}

// historyResponse is the conversations.history payload.
type historyResponse struct {
	OK       bool           `json:"ok"`
	Error    string         `json:"error,omitempty"`
	Messages []slackMessage `json:"messages"`
	HasMore  bool           `json:"has_more"`
}

type slackMessage struct {
	Type       string `json:"type"`
	Subtype    string `json:"subtype,omitempty"`
	User       string `json:"user"`
	BotID      string `json:"bot_id,omitempty"`
	Text       string `json:"text"`
	TS         string `json:"ts"`
	ThreadTS   string `json:"thread_ts,omitempty"`
	ReplyCount int    `json:"reply_count,omitempty"`
}

package emailsend

import (
	"context"
	"time"

	"work-planner/internal/common/logger"
)

type Input struct {
	To      []string `json:"to"`
	CC      []string `json:"cc,omitempty"`
	BCC     []string `json:"bcc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type Output struct {
	Success   bool      `json:"success"`
	MessageID string    `json:"messageId,omitempty"`
	Provider  string    `json:"provider"`
	Attempts  int       `json:"attempts"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}

// Message is a fully addressed report ready for a Sender.
type Message struct {
	From      string
	FromName  string
	To        []string
	CC        []string
	BCC       []string
	Subject   string
	HTML      string
	MessageID string
	Date      time.Time
}

// Recipients returns every envelope recipient.
func (m *Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.CC)+len(m.BCC))
	out = append(out, m.To...)
	out = append(out, m.CC...)
	return append(out, m.BCC...)
}

// Sender delivers one message in a single attempt and returns the
// provider's message id.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
	Name() string
}

type ServiceDependencies struct {
	Sender Sender
	Logger logger.Logger
}

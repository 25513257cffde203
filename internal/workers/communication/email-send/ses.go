package emailsend

import (
	"context"
	"net/mail"

	awsclient "work-planner/internal/common/aws"
)

// SESSender delivers through Amazon SES. SES assigns its own Message-ID.
type SESSender struct {
	client *awsclient.SESClient
}

func NewSESSender(client *awsclient.SESClient) *SESSender {
	return &SESSender{client: client}
}

func (s *SESSender) Name() string { return ProviderSES }

func (s *SESSender) Send(ctx context.Context, msg *Message) (string, error) {
	from := msg.From
	if msg.FromName != "" {
		from = (&mail.Address{Name: msg.FromName, Address: msg.From}).String()
	}
	return s.client.SendHTML(ctx, awsclient.HTMLEmail{
		From:    from,
		To:      msg.To,
		CC:      msg.CC,
		BCC:     msg.BCC,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
}

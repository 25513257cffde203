package emailsend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	awsclient "work-planner/internal/common/aws"
	"work-planner/internal/common/config"
	apperrors "work-planner/internal/common/errors"
	"work-planner/internal/common/logger"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func (m *MockSender) Name() string { return ProviderSMTP }

type MockSESAPI struct {
	mock.Mock
}

func (m *MockSESAPI) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.From = "planner@example.com"
	cfg.FromName = "Work Planner"
	cfg.SMTP.Host = "smtp.example.com"
	cfg.RetryDelay = 0
	return cfg
}

func newService(t *testing.T, cfg *Config, sender Sender) *Service {
	t.Helper()
	svc, err := NewService(cfg, ServiceDependencies{Sender: sender, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return svc
}

func validInput() *Input {
	return &Input{
		To:      []string{"lead@example.com"},
		CC:      []string{" pm@example.com "},
		BCC:     []string{"audit@example.org"},
		Subject: "Daily Team Summary - tools - 2024-05-02",
		HTML:    "<h1>Report</h1>",
	}
}

func TestExecute_SucceedsAfterRetries(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("451 try later")).Twice()
	sender.On("Send", mock.Anything, mock.Anything).Return("id-1", nil).Once()

	out, err := newService(t, testConfig(), sender).Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, "id-1", out.MessageID)

	msg := sender.Calls[0].Arguments.Get(1).(*Message)
	assert.Equal(t, []string{"pm@example.com"}, msg.CC)
	assert.Equal(t, []string{"lead@example.com", "pm@example.com", "audit@example.org"}, msg.Recipients())
	assert.True(t, strings.HasSuffix(msg.MessageID, "@example.com"))
	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestExecute_FailsAfterMaxAttempts(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	_, err := newService(t, testConfig(), sender).Execute(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSMTPSendFailed, apperrors.ExtractCode(err))
	assert.Contains(t, err.Error(), "connection refused")
	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestExecute_CancelledDuringDelay(t *testing.T) {
	cfg := testConfig()
	cfg.RetryDelay = time.Hour
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := newService(t, cfg, sender).Execute(ctx, validInput())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestExecute_InvalidRecipientsAreNotSent(t *testing.T) {
	sender := new(MockSender)
	in := validInput()
	in.CC = []string{"not-an-address"}

	_, err := newService(t, testConfig(), sender).Execute(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, apperrors.ExtractCode(err))
	assert.Contains(t, err.Error(), "not-an-address")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestIsValidEmail(t *testing.T) {
	for addr, want := range map[string]bool{
		"a.b+c@example.co.uk": true,
		"user@example.com":    true,
		"user@example":        false,
		"@example.com":        false,
		"user example@x.com":  false,
		"":                    false,
	} {
		assert.Equal(t, want, IsValidEmail(addr), addr)
	}
}

func TestBuildMIME_HeadersAndBody(t *testing.T) {
	raw, err := buildMIME(&Message{
		From:      "planner@example.com",
		FromName:  "Work Planner",
		To:        []string{"lead@example.com"},
		CC:        []string{"pm@example.com"},
		BCC:       []string{"audit@example.org"},
		Subject:   "Résumé of the day",
		HTML:      "<p>café</p>",
		MessageID: "abc@example.com",
		Date:      time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "audit@example.org")

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Résumé of the day", subject)

	id, err := mr.Header.MessageID()
	require.NoError(t, err)
	assert.Equal(t, "abc@example.com", id)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "lead@example.com", to[0].Address)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", string(body))
}

func TestSESSender_SendsThroughSES(t *testing.T) {
	api := new(MockSESAPI)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == `"Work Planner" <planner@example.com>` &&
			len(in.Destination.BccAddresses) == 1 &&
			aws.ToString(in.Message.Body.Html.Data) == "<h1>Report</h1>"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil)

	cfg := testConfig()
	cfg.Provider = ProviderSES
	cfg.Region = "us-east-1"
	svc := newService(t, cfg, NewSESSender(awsclient.NewSESClientWithAPI(api)))

	out, err := svc.Execute(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, "ses-123", out.MessageID)
	assert.Equal(t, ProviderSES, out.Provider)
	api.AssertExpectations(t)
}

func TestSESSender_FailureCode(t *testing.T) {
	api := new(MockSESAPI)
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("MessageRejected"))

	cfg := testConfig()
	cfg.Provider = ProviderSES
	cfg.Region = "us-east-1"
	cfg.MaxAttempts = 2
	svc := newService(t, cfg, NewSESSender(awsclient.NewSESClientWithAPI(api)))

	_, err := svc.Execute(context.Background(), validInput())
	assert.Equal(t, apperrors.ErrCodeEmailSendFailed, apperrors.ExtractCode(err))
	api.AssertNumberOfCalls(t, "SendEmail", 2)
}

func TestCheckConnection_Unsupported(t *testing.T) {
	svc := newService(t, testConfig(), new(MockSender))
	assert.Error(t, svc.CheckConnection(context.Background()))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad from", func(c *Config) { c.From = "nobody" }},
		{"no host", func(c *Config) { c.SMTP.Host = "" }},
		{"bad security", func(c *Config) { c.SMTP.Security = "starttls" }},
		{"no attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"ses without region", func(c *Config) { c.Provider = ProviderSES }},
		{"unknown provider", func(c *Config) { c.Provider = "pigeon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, testConfig().Validate())
}

func TestFromAppConfig_RetryDelay(t *testing.T) {
	app := &config.Config{}
	app.Email.From = "planner@example.com"
	app.Email.SMTP.Host = "smtp.example.com"

	app.Email.Retry.Delay = 0
	cfg := FromAppConfig(app)
	assert.Equal(t, time.Duration(0), cfg.RetryDelay)
	assert.NoError(t, cfg.Validate())

	app.Email.Retry.Delay = 1500
	assert.Equal(t, 1500*time.Millisecond, FromAppConfig(app).RetryDelay)

	app.Email.Retry.Delay = -1
	err := FromAppConfig(app).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry delay")
}

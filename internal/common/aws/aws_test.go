package aws

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESClient_SendHTML(t *testing.T) {
	m := &mockSES{}
	m.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "planner@example.com" &&
			len(in.Destination.ToAddresses) == 1 &&
			len(in.Destination.CcAddresses) == 1 &&
			aws.ToString(in.Message.Subject.Data) == "Daily" &&
			strings.Contains(aws.ToString(in.Message.Body.Html.Data), "<h1>")
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil)

	id, err := NewSESClientWithAPI(m).SendHTML(context.Background(), HTMLEmail{
		From:    "planner@example.com",
		To:      []string{"lead@example.com"},
		CC:      []string{"cc@example.com"},
		Subject: "Daily",
		HTML:    "<h1>Report</h1>",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	m.AssertExpectations(t)
}

func TestSESClient_SendHTMLError(t *testing.T) {
	m := &mockSES{}
	m.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewSESClientWithAPI(m).SendHTML(context.Background(), HTMLEmail{From: "a@b.co"})
	assert.EqualError(t, err, "throttled")
}

func TestSNSClient_PublishAlertTruncatesSubject(t *testing.T) {
	m := &mockSNS{}
	m.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return len(aws.ToString(in.Subject)) == 100 && aws.ToString(in.TopicArn) == "arn:topic"
	})).Return(&sns.PublishOutput{MessageId: aws.String("n-1")}, nil)

	id, err := NewSNSClientWithAPI(m).PublishAlert(context.Background(), "arn:topic", strings.Repeat("x", 150), "body")
	require.NoError(t, err)
	assert.Equal(t, "n-1", id)
}

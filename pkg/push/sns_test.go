package push

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (s *stubSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	s.input = params
	if s.err != nil {
		return nil, s.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-msg-1")}, nil
}

func TestSNSProvider_Send(t *testing.T) {
	t.Parallel()

	client := &stubSNSClient{}
	p := NewSNSProvider(client)

	receipt, err := p.Send(context.Background(), "arn:aws:sns:us-east-1:123:endpoint/GCM/app/token", Payload{
		Title: "Challenge",
		Body:  "You have been challenged",
		Sound: "default",
		Data:  map[string]string{"challenge_id": "c1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sns-msg-1", receipt.MessageID)

	require.NotNil(t, client.input)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:endpoint/GCM/app/token", *client.input.TargetArn)
	assert.Equal(t, "json", *client.input.MessageStructure)

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(*client.input.Message), &envelope))
	assert.Equal(t, "You have been challenged", envelope["default"])

	var inner snsMessage
	require.NoError(t, json.Unmarshal([]byte(envelope["GCM"]), &inner))
	assert.Equal(t, "Challenge", inner.Notification["title"])
	assert.Equal(t, "c1", inner.Data["challenge_id"])
}

func TestSNSProvider_SendPublishError(t *testing.T) {
	t.Parallel()

	p := NewSNSProvider(&stubSNSClient{err: errors.New("endpoint disabled")})

	_, err := p.Send(context.Background(), "arn:aws:sns:::endpoint", Payload{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrSendFailed)
}

func TestSNSProvider_SendEmptyToken(t *testing.T) {
	t.Parallel()

	p := NewSNSProvider(&stubSNSClient{})

	_, err := p.Send(context.Background(), "", Payload{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrEmptyToken)
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := NewFromConfig(context.Background(), Config{Provider: "smoke-signal"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

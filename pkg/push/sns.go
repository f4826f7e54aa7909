package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// snsAPI is the subset of the SNS client this provider uses.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSProvider sends notifications through AWS SNS mobile push. Device tokens
// are platform endpoint ARNs registered with an SNS platform application.
type SNSProvider struct {
	client snsAPI
}

// NewSNSProvider creates an SNS-backed push provider.
func NewSNSProvider(client snsAPI) *SNSProvider {
	return &SNSProvider{client: client}
}

// snsMessage is the GCM-structure payload SNS forwards to the platform.
type snsMessage struct {
	Notification map[string]string `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

func (p *SNSProvider) Send(ctx context.Context, token string, payload Payload) (Receipt, error) {
	if token == "" {
		return Receipt{}, ErrEmptyToken
	}

	notification := map[string]string{
		"title": payload.Title,
		"body":  payload.Body,
	}
	if payload.Sound != "" {
		notification["sound"] = payload.Sound
	}
	inner, err := json.Marshal(snsMessage{Notification: notification, Data: payload.Data})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to marshal sns message: %w", err)
	}

	// SNS requires the platform payload nested as a JSON string under the
	// platform key.
	envelope, err := json.Marshal(map[string]string{
		"default": payload.Body,
		"GCM":     string(inner),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to marshal sns envelope: %w", err)
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(token),
		Message:          aws.String(string(envelope)),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}

	receipt := Receipt{}
	if out != nil && out.MessageId != nil {
		receipt.MessageID = *out.MessageId
	}
	return receipt, nil
}

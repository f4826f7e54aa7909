package push

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
)

// Config holds push transport configuration. Provider selects the backend
// statically; only the fields for the chosen backend need to be set.
type Config struct {
	Provider string `env:"PUSH_PROVIDER" envDefault:"fcm"` // fcm, expo, sns

	FCMServerKey string `env:"FCM_SERVER_KEY"`
	FCMBaseURL   string `env:"FCM_BASE_URL" envDefault:"https://fcm.googleapis.com"`

	ExpoAccessToken string `env:"EXPO_ACCESS_TOKEN"`
	ExpoBaseURL     string `env:"EXPO_BASE_URL" envDefault:"https://exp.host"`

	SNSRegion string `env:"SNS_REGION" envDefault:"us-east-1"`
}

// NewFromConfig builds the Provider the configuration names.
func NewFromConfig(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "fcm":
		return NewFCMProvider(cfg)
	case "expo":
		return NewExpoProvider(cfg)
	case "sns":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SNSRegion))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return NewSNSProvider(awssns.NewFromConfig(awsCfg)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

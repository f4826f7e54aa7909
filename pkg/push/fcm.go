package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FCMProvider sends notifications through Firebase Cloud Messaging's legacy
// HTTP API.
type FCMProvider struct {
	serverKey string
	baseURL   string
	client    *http.Client
}

// FCMOption configures an FCMProvider.
type FCMOption func(*FCMProvider)

// WithFCMHTTPClient overrides the HTTP client, e.g. for tests.
func WithFCMHTTPClient(client *http.Client) FCMOption {
	return func(p *FCMProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// NewFCMProvider creates an FCM-backed push provider.
func NewFCMProvider(cfg Config, opts ...FCMOption) (*FCMProvider, error) {
	if cfg.FCMServerKey == "" {
		return nil, fmt.Errorf("%w: FCMServerKey is required", ErrInvalidConfig)
	}
	if cfg.FCMBaseURL == "" {
		return nil, fmt.Errorf("%w: FCMBaseURL is required", ErrInvalidConfig)
	}

	p := &FCMProvider{
		serverKey: cfg.FCMServerKey,
		baseURL:   cfg.FCMBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound,omitempty"`
}

type fcmRequest struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmResponse struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Results     []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (p *FCMProvider) Send(ctx context.Context, token string, payload Payload) (Receipt, error) {
	if token == "" {
		return Receipt{}, ErrEmptyToken
	}

	body, err := json.Marshal(fcmRequest{
		To: token,
		Notification: fcmNotification{
			Title: payload.Title,
			Body:  payload.Body,
			Sound: payload.Sound,
		},
		Data: payload.Data,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to marshal fcm request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/fcm/send", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to build fcm request: %w", err)
	}
	req.Header.Set("Authorization", "key="+p.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("fcm status %d", resp.StatusCode))
	}

	var parsed fcmResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("malformed fcm response: %w", err))
	}

	// A 200 response can still carry a per-token error, e.g. NotRegistered.
	if parsed.Success < 1 {
		reason := "unknown"
		if len(parsed.Results) > 0 && parsed.Results[0].Error != "" {
			reason = parsed.Results[0].Error
		}
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("fcm rejected token: %s", reason))
	}

	receipt := Receipt{}
	if len(parsed.Results) > 0 {
		receipt.MessageID = parsed.Results[0].MessageID
	}
	return receipt, nil
}

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

// ExpoProvider sends notifications through the Expo push service, which
// fronts both APNs and FCM for Expo-built mobile apps.
type ExpoProvider struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

// ExpoOption configures an ExpoProvider.
type ExpoOption func(*ExpoProvider)

// WithExpoHTTPClient overrides the HTTP client, e.g. for tests.
func WithExpoHTTPClient(client *http.Client) ExpoOption {
	return func(p *ExpoProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// NewExpoProvider creates an Expo-backed push provider. The access token is
// optional; Expo only requires it for apps with enhanced push security.
func NewExpoProvider(cfg Config, opts ...ExpoOption) (*ExpoProvider, error) {
	if cfg.ExpoBaseURL == "" {
		return nil, fmt.Errorf("%w: ExpoBaseURL is required", ErrInvalidConfig)
	}

	p := &ExpoProvider{
		accessToken: cfg.ExpoAccessToken,
		baseURL:     cfg.ExpoBaseURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type expoRequest struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

type expoResponse struct {
	Data struct {
		Status  string `json:"status"` // "ok" or "error"
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"data"`
}

func (p *ExpoProvider) Send(ctx context.Context, token string, payload Payload) (Receipt, error) {
	if token == "" {
		return Receipt{}, ErrEmptyToken
	}

	body, err := json.Marshal(expoRequest{
		To:    token,
		Title: payload.Title,
		Body:  payload.Body,
		Sound: payload.Sound,
		Data:  payload.Data,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to marshal expo request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/--/api/v2/push/send", bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to build expo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.accessToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("expo status %d", resp.StatusCode))
	}

	var parsed expoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("malformed expo response: %w", err))
	}
	if parsed.Data.Status != "ok" {
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("expo ticket error: %s", parsed.Data.Message))
	}
	return Receipt{MessageID: parsed.Data.ID}, nil
}

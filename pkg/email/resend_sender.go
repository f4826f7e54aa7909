package email

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

// ResendSender delivers mail through the Resend HTTP API.
type ResendSender struct {
	apiKey  string
	baseURL string
	from    string
	replyTo string
	client  *http.Client
}

// ResendOption configures a ResendSender.
type ResendOption func(*ResendSender)

// WithResendHTTPClient overrides the HTTP client, e.g. for tests.
func WithResendHTTPClient(client *http.Client) ResendOption {
	return func(s *ResendSender) {
		if client != nil {
			s.client = client
		}
	}
}

// NewResendSender creates a Resend-backed email sender.
func NewResendSender(cfg Config, opts ...ResendOption) (*ResendSender, error) {
	if cfg.ResendAPIKey == "" {
		return nil, fmt.Errorf("%w: ResendAPIKey is required", ErrInvalidConfig)
	}
	if cfg.ResendBaseURL == "" {
		return nil, fmt.Errorf("%w: ResendBaseURL is required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}

	s := &ResendSender{
		apiKey:  cfg.ResendAPIKey,
		baseURL: cfg.ResendBaseURL,
		from:    cfg.SenderEmail,
		replyTo: cfg.ReplyTo,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// resendRequest is Resend's wire shape for POST /emails.
type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Cc          []string           `json:"cc,omitempty"`
	Bcc         []string           `json:"bcc,omitempty"`
	ReplyTo     string             `json:"reply_to,omitempty"`
	Subject     string             `json:"subject"`
	Text        string             `json:"text,omitempty"`
	HTML        string             `json:"html,omitempty"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"` // base64-encoded by encoding/json
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"` // set on error responses
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}

	reqBody := resendRequest{
		From:    s.from,
		To:      msg.To,
		Cc:      msg.Cc,
		Bcc:     msg.Bcc,
		ReplyTo: s.replyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	}
	for _, att := range msg.Attachments {
		reqBody.Attachments = append(reqBody.Attachments, resendAttachment{
			Filename: att.Filename,
			Content:  att.Content,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, fmt.Errorf("malformed resend response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, errors.Join(
			ErrSendFailed,
			fmt.Errorf("resend error: %d - %s", resp.StatusCode, parsed.Message),
		)
	}
	return Receipt{MessageID: parsed.ID}, nil
}

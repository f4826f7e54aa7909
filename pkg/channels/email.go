package channels

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/courtflow/alertkit/pkg/alerts"
	"github.com/courtflow/alertkit/pkg/email"
	"github.com/courtflow/alertkit/pkg/logger"
)

// EmailObserver delivers alerts by email, one personalized message per
// eligible recipient.
type EmailObserver struct {
	sender  email.Sender
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// EmailOption configures an EmailObserver.
type EmailOption func(*EmailObserver)

// WithEmailLogger sets the structured logger.
func WithEmailLogger(log *slog.Logger) EmailOption {
	return func(o *EmailObserver) {
		if log != nil {
			o.log = log
		}
	}
}

// WithEmailTimeout bounds the batch send. Non-positive values are ignored.
func WithEmailTimeout(d time.Duration) EmailOption {
	return func(o *EmailObserver) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithEmailClock overrides the quiet-hours clock, e.g. for tests.
func WithEmailClock(now func() time.Time) EmailOption {
	return func(o *EmailObserver) {
		if now != nil {
			o.now = now
		}
	}
}

// NewEmailObserver creates an email channel observer backed by the sender.
func NewEmailObserver(sender email.Sender, opts ...EmailOption) *EmailObserver {
	o := &EmailObserver{
		sender:  sender,
		log:     slog.New(slog.DiscardHandler),
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *EmailObserver) ID() string { return "email-observer" }

func (o *EmailObserver) Channels() []alerts.Channel {
	return []alerts.Channel{alerts.ChannelEmail}
}

// CanHandle requires the alert to request email and at least one recipient
// to carry an address their preferences allow using. Quiet hours are
// time-dependent and checked at send time, not here.
func (o *EmailObserver) CanHandle(alert *alerts.Alert) bool {
	if o.sender == nil || !alert.HasChannel(alerts.ChannelEmail) {
		return false
	}
	for _, r := range alert.Recipients {
		if r.Email != "" && r.CanReceive(alerts.ChannelEmail) && r.WantsType(alert.Type) {
			return true
		}
	}
	return false
}

func (o *EmailObserver) Notify(ctx context.Context, alert *alerts.Alert) alerts.DeliveryResult {
	now := o.now()
	var msgs []email.Message
	for _, r := range alert.Recipients {
		if r.Email == "" || !r.CanReceive(alerts.ChannelEmail) || !r.WantsType(alert.Type) || r.InQuietHours(now) {
			continue
		}

		body, err := renderEmailBody(*alert, r)
		if err != nil {
			o.log.ErrorContext(ctx, "failed to render alert email",
				logger.AlertID(alert.ID), logger.Error(err))
			continue
		}
		msgs = append(msgs, email.Message{
			To:      []string{r.Email},
			Subject: alert.Title,
			HTML:    body,
			Tag:     string(alert.Type),
		})
	}
	if len(msgs) == 0 {
		return alerts.Failed(alerts.ChannelEmail, "no valid recipients")
	}

	results := email.SendBatch(ctx, o.sender, msgs, o.timeout)

	succeeded := 0
	var firstMessageID, firstErr string
	for _, res := range results {
		if res.Err != nil {
			if firstErr == "" {
				firstErr = res.Err.Error()
			}
			continue
		}
		if firstMessageID == "" {
			firstMessageID = res.Receipt.MessageID
		}
		succeeded++
	}

	if succeeded == 0 {
		o.log.WarnContext(ctx, "all alert emails failed",
			logger.AlertID(alert.ID), logger.RecipientCount(len(msgs)))
		return alerts.Failed(alerts.ChannelEmail, fmt.Sprintf("all %d sends failed: %s", len(msgs), firstErr))
	}

	meta := map[string]string{
		"recipient_count": strconv.Itoa(succeeded),
	}
	if firstMessageID != "" {
		meta["message_id"] = firstMessageID
	}
	return alerts.SucceededAt(alerts.ChannelEmail, o.now(), meta)
}

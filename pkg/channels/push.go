package channels

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/courtflow/alertkit/pkg/alerts"
	"github.com/courtflow/alertkit/pkg/logger"
	"github.com/courtflow/alertkit/pkg/push"
)

// PushObserver delivers alerts as mobile push notifications through a
// configured provider backend.
type PushObserver struct {
	provider push.Provider
	log      *slog.Logger
	now      func() time.Time
}

// PushOption configures a PushObserver.
type PushOption func(*PushObserver)

// WithPushLogger sets the structured logger.
func WithPushLogger(log *slog.Logger) PushOption {
	return func(o *PushObserver) {
		if log != nil {
			o.log = log
		}
	}
}

// WithPushClock overrides the quiet-hours clock, e.g. for tests.
func WithPushClock(now func() time.Time) PushOption {
	return func(o *PushObserver) {
		if now != nil {
			o.now = now
		}
	}
}

// NewPushObserver creates a push channel observer backed by the provider.
func NewPushObserver(provider push.Provider, opts ...PushOption) *PushObserver {
	o := &PushObserver{
		provider: provider,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *PushObserver) ID() string { return "push-observer" }

func (o *PushObserver) Channels() []alerts.Channel {
	return []alerts.Channel{alerts.ChannelPush}
}

// CanHandle requires the alert to request push and at least one recipient to
// carry a device token their preferences allow using.
func (o *PushObserver) CanHandle(alert *alerts.Alert) bool {
	if o.provider == nil || !alert.HasChannel(alerts.ChannelPush) {
		return false
	}
	for _, r := range alert.Recipients {
		if r.PushToken != "" && r.CanReceive(alerts.ChannelPush) && r.WantsType(alert.Type) {
			return true
		}
	}
	return false
}

func (o *PushObserver) Notify(ctx context.Context, alert *alerts.Alert) alerts.DeliveryResult {
	payload := buildPushPayload(alert)

	now := o.now()
	attempted := 0
	succeeded := 0
	var firstMessageID, firstErr string
	for _, r := range alert.Recipients {
		if r.PushToken == "" || !r.CanReceive(alerts.ChannelPush) || !r.WantsType(alert.Type) || r.InQuietHours(now) {
			continue
		}
		attempted++

		receipt, err := o.provider.Send(ctx, r.PushToken, payload)
		if err != nil {
			if firstErr == "" {
				firstErr = err.Error()
			}
			o.log.WarnContext(ctx, "push delivery failed",
				logger.AlertID(alert.ID), logger.UserID(r.UserID), logger.Error(err))
			continue
		}
		if firstMessageID == "" {
			firstMessageID = receipt.MessageID
		}
		succeeded++
	}

	if attempted == 0 {
		return alerts.Failed(alerts.ChannelPush, "no valid recipients")
	}
	if succeeded == 0 {
		return alerts.Failed(alerts.ChannelPush, fmt.Sprintf("all %d sends failed: %s", attempted, firstErr))
	}

	meta := map[string]string{
		"recipient_count": strconv.Itoa(succeeded),
	}
	if firstMessageID != "" {
		meta["message_id"] = firstMessageID
	}
	return alerts.SucceededAt(alerts.ChannelPush, o.now(), meta)
}

// buildPushPayload flattens the alert into the provider-agnostic payload.
// Data values ride along for the client app to route taps with.
func buildPushPayload(alert *alerts.Alert) push.Payload {
	data := map[string]string{
		"alert_id": alert.ID,
		"type":     string(alert.Type),
		"severity": string(alert.Severity),
	}
	if alert.Metadata.ReservationID != "" {
		data["reservation_id"] = alert.Metadata.ReservationID
	}
	if alert.Metadata.CourtID != "" {
		data["court_id"] = alert.Metadata.CourtID
	}
	if alert.Metadata.ChallengeID != "" {
		data["challenge_id"] = alert.Metadata.ChallengeID
	}
	if alert.Metadata.ActionURL != "" {
		data["action_url"] = alert.Metadata.ActionURL
	}

	return push.Payload{
		Title: alert.Title,
		Body:  alert.Message,
		Sound: pushSound(alert.Severity),
		Data:  data,
	}
}

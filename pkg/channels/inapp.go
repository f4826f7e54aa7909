package channels

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/courtflow/alertkit/pkg/alerts"
	"github.com/courtflow/alertkit/pkg/inapp"
	"github.com/courtflow/alertkit/pkg/logger"
)

// InAppObserver delivers alerts as toasts through an in-process center. No
// network I/O is involved; delivery succeeds the moment the toast is
// published.
type InAppObserver struct {
	center *inapp.Center
	log    *slog.Logger
}

// InAppOption configures an InAppObserver.
type InAppOption func(*InAppObserver)

// WithInAppLogger sets the structured logger.
func WithInAppLogger(log *slog.Logger) InAppOption {
	return func(o *InAppObserver) {
		if log != nil {
			o.log = log
		}
	}
}

// NewInAppObserver creates an in-app channel observer publishing to center.
func NewInAppObserver(center *inapp.Center, opts ...InAppOption) *InAppObserver {
	o := &InAppObserver{
		center: center,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *InAppObserver) ID() string { return "inapp-observer" }

func (o *InAppObserver) Channels() []alerts.Channel {
	return []alerts.Channel{alerts.ChannelInApp}
}

// CanHandle requires a live center and at least one recipient whose
// preferences allow in-app delivery. Quiet hours do not apply: a toast only
// renders while the user is actively connected.
func (o *InAppObserver) CanHandle(alert *alerts.Alert) bool {
	if o.center == nil || !alert.HasChannel(alerts.ChannelInApp) {
		return false
	}
	for _, r := range alert.Recipients {
		if r.UserID != "" && r.CanReceive(alerts.ChannelInApp) && r.WantsType(alert.Type) {
			return true
		}
	}
	return false
}

func (o *InAppObserver) Notify(ctx context.Context, alert *alerts.Alert) alerts.DeliveryResult {
	published := 0
	delivered := 0
	var firstErr string
	for _, r := range alert.Recipients {
		if r.UserID == "" || !r.CanReceive(alerts.ChannelInApp) || !r.WantsType(alert.Type) {
			continue
		}

		n, err := o.center.Publish(ctx, inapp.Toast{
			AlertID:   alert.ID,
			UserID:    r.UserID,
			Title:     alert.Title,
			Message:   alert.Message,
			Style:     toastStyle(alert.Severity),
			Duration:  displayDuration(alert.Severity),
			ActionURL: alert.Metadata.ActionURL,
		})
		if err != nil {
			if firstErr == "" {
				firstErr = err.Error()
			}
			o.log.WarnContext(ctx, "toast publish failed",
				logger.AlertID(alert.ID), logger.UserID(r.UserID), logger.Error(err))
			continue
		}
		published++
		delivered += n
	}

	if published == 0 {
		if firstErr != "" {
			return alerts.Failed(alerts.ChannelInApp, firstErr)
		}
		return alerts.Failed(alerts.ChannelInApp, "no valid recipients")
	}

	return alerts.Succeeded(alerts.ChannelInApp, map[string]string{
		"recipient_count": strconv.Itoa(published),
		"delivered":       strconv.Itoa(delivered),
	})
}

package channels

import (
	"context"
	"log/slog"
	"time"

	"github.com/courtflow/alertkit/pkg/alerts"
	"github.com/courtflow/alertkit/pkg/logger"
)

// BrowserNotification is what the client-side bridge renders as a native
// browser notification. AutoCloseAfter zero with RequireInteraction set
// keeps the notification on screen until the user acts on it.
type BrowserNotification struct {
	AlertID            string        `json:"alert_id"`
	Title              string        `json:"title"`
	Body               string        `json:"body"`
	TargetURL          string        `json:"target_url,omitempty"`
	RequireInteraction bool          `json:"require_interaction"`
	AutoCloseAfter     time.Duration `json:"auto_close_after"`
}

// Surface bridges to the browser Notification API on a connected client.
// Supported and PermissionGranted reflect bridge state and must not perform
// I/O; Show pushes the notification out to the client.
type Surface interface {
	Supported() bool
	PermissionGranted() bool
	Show(ctx context.Context, n BrowserNotification) error
}

// BrowserObserver delivers alerts as native browser notifications through a
// Surface bridge.
type BrowserObserver struct {
	surface Surface
	log     *slog.Logger
}

// BrowserOption configures a BrowserObserver.
type BrowserOption func(*BrowserObserver)

// WithBrowserLogger sets the structured logger.
func WithBrowserLogger(log *slog.Logger) BrowserOption {
	return func(o *BrowserObserver) {
		if log != nil {
			o.log = log
		}
	}
}

// NewBrowserObserver creates a browser channel observer over the surface.
func NewBrowserObserver(surface Surface, opts ...BrowserOption) *BrowserObserver {
	o := &BrowserObserver{
		surface: surface,
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *BrowserObserver) ID() string { return "browser-observer" }

func (o *BrowserObserver) Channels() []alerts.Channel {
	return []alerts.Channel{alerts.ChannelBrowser}
}

// CanHandle requires browser notification support with permission already
// granted, plus at least one recipient whose preferences allow the channel.
func (o *BrowserObserver) CanHandle(alert *alerts.Alert) bool {
	if o.surface == nil || !o.surface.Supported() || !o.surface.PermissionGranted() {
		return false
	}
	if !alert.HasChannel(alerts.ChannelBrowser) {
		return false
	}
	for _, r := range alert.Recipients {
		if r.CanReceive(alerts.ChannelBrowser) && r.WantsType(alert.Type) {
			return true
		}
	}
	return false
}

func (o *BrowserObserver) Notify(ctx context.Context, alert *alerts.Alert) alerts.DeliveryResult {
	n := BrowserNotification{
		AlertID:   alert.ID,
		Title:     alert.Title,
		Body:      alert.Message,
		TargetURL: alert.Metadata.ActionURL,
	}
	if alert.Severity == alerts.SeverityCritical {
		n.RequireInteraction = true
	} else {
		n.AutoCloseAfter = displayDuration(alert.Severity)
	}

	if err := o.surface.Show(ctx, n); err != nil {
		o.log.WarnContext(ctx, "browser notification failed",
			logger.AlertID(alert.ID), logger.Error(err))
		return alerts.Failed(alerts.ChannelBrowser, err.Error())
	}
	return alerts.Succeeded(alerts.ChannelBrowser, nil)
}

package channels

import (
	"time"

	"github.com/courtflow/alertkit/pkg/alerts"
)

// displayDuration maps severity to how long a transient notification stays
// on screen. Zero means the notification is sticky until dismissed.
func displayDuration(sev alerts.Severity) time.Duration {
	switch sev {
	case alerts.SeverityCritical:
		return 0
	case alerts.SeverityError:
		return 10 * time.Second
	case alerts.SeverityWarning:
		return 8 * time.Second
	default:
		return 5 * time.Second
	}
}

// toastStyle maps severity to a client-side presentation style. Critical
// renders as error; there is no separate critical style on screen, urgency
// is conveyed by stickiness instead.
func toastStyle(sev alerts.Severity) string {
	switch sev {
	case alerts.SeveritySuccess:
		return "success"
	case alerts.SeverityWarning:
		return "warning"
	case alerts.SeverityError, alerts.SeverityCritical:
		return "error"
	default:
		return "info"
	}
}

// pushSound maps severity to the notification sound requested from the
// platform.
func pushSound(sev alerts.Severity) string {
	if sev == alerts.SeverityCritical || sev == alerts.SeverityError {
		return "critical.wav"
	}
	return "default"
}

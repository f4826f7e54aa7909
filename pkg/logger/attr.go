package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// AlertID records an alert identifier under the key "alert_id".
func AlertID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("alert_id", id)
}

// UserID records a user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Channel records a delivery channel name under the key "channel".
func Channel(ch any) slog.Attr {
	if ch == nil {
		return slog.Attr{}
	}
	return slog.Any("channel", ch)
}

// Observer records an observer identifier under the key "observer_id".
func Observer(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("observer_id", id)
}

// Provider records a transport provider name under the key "provider".
func Provider(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("provider", name)
}

// RecipientCount records the number of targeted recipients.
func RecipientCount(n int) slog.Attr {
	return slog.Int("recipient_count", n)
}

// Component records which component produced the record.
func Component(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("component", name)
}

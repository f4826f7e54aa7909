package push

import "context"

// Payload is the provider-agnostic notification content delivered to a
// device. Data carries application key/value pairs the client app reads when
// the user taps the notification.
type Payload struct {
	Title string
	Body  string
	Sound string
	Data  map[string]string
}

// Receipt identifies a delivered notification on the provider side.
type Receipt struct {
	MessageID string
}

// Provider sends a notification to a single device token. Implementations
// must be safe for concurrent use.
type Provider interface {
	Send(ctx context.Context, token string, payload Payload) (Receipt, error)
}

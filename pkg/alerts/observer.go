package alerts

import "context"

// Observer is a channel-specific delivery strategy registered with the
// Dispatcher. Implementations are stateless with respect to alert identity:
// they receive an alert, attempt delivery, and return a result. They must not
// retain the alert or mutate its lifecycle fields.
type Observer interface {
	// ID uniquely identifies the registration. Attach rejects duplicates.
	ID() string

	// Channels returns the channel set this observer owns. Used by the
	// Dispatcher to scope fan-out to observers whose set intersects the
	// alert's requested channels.
	Channels() []Channel

	// CanHandle is a pure predicate: it must not perform I/O or have side
	// effects. It checks the alert requests a channel this observer owns,
	// that at least one recipient carries a usable address for it, and that
	// any ambient capability the transport needs is available.
	CanHandle(alert *Alert) bool

	// Notify performs the delivery attempt. Any fault must be converted into
	// a result with Success=false and an error description; it must never
	// propagate out.
	Notify(ctx context.Context, alert *Alert) DeliveryResult
}

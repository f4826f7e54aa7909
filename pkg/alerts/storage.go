package alerts

import (
	"context"
	"time"
)

// Storage handles alert and delivery-history persistence. Implementations
// must be safe for concurrent use; the Dispatcher serializes lifecycle
// mutations per alert id on top of it.
type Storage interface {
	// Save inserts or updates an alert by id.
	Save(ctx context.Context, alert Alert) error

	// Find returns the alert with the given id, or ErrAlertNotFound.
	Find(ctx context.Context, id string) (*Alert, error)

	// FindAll returns every stored alert.
	FindAll(ctx context.Context) ([]Alert, error)

	// FindDueScheduled returns alerts in scheduled status whose
	// ScheduledFor is at or before now.
	FindDueScheduled(ctx context.Context, now time.Time) ([]Alert, error)

	// DeleteBefore removes every alert (and its history) created strictly
	// before the cutoff and returns the count removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)

	// AppendHistory appends delivery results to the alert's history.
	// History is append-only per attempt.
	AppendHistory(ctx context.Context, alertID string, results []DeliveryResult) error

	// FindHistory returns the full delivery history for an alert, oldest
	// attempt first. Unknown ids yield an empty history, not an error.
	FindHistory(ctx context.Context, alertID string) ([]DeliveryResult, error)
}

package alerts

import "errors"

var (
	// ErrAlertNotFound is returned when operating on an unknown alert id.
	ErrAlertNotFound = errors.New("alerts: alert not found")

	// ErrAlreadySent is returned by Retry when the alert already reached the
	// sent stage.
	ErrAlreadySent = errors.New("alerts: alert already sent")

	// ErrInvalidState is returned when an operation is not permitted by the
	// alert's current lifecycle status.
	ErrInvalidState = errors.New("alerts: operation not allowed in current status")

	// ErrDuplicateObserver is returned by Attach when the observer id is
	// already registered.
	ErrDuplicateObserver = errors.New("alerts: observer id already registered")

	// ErrNilObserver is returned by Attach when a nil observer is passed.
	ErrNilObserver = errors.New("alerts: observer is nil")

	// ErrNilStorage is returned by New when storage is nil.
	ErrNilStorage = errors.New("alerts: storage is nil")
)

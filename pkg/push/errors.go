package push

import "errors"

var (
	// ErrInvalidConfig is returned when a provider is constructed with
	// missing or malformed configuration.
	ErrInvalidConfig = errors.New("push: invalid configuration")

	// ErrEmptyToken is returned when Send is called without a device token.
	ErrEmptyToken = errors.New("push: empty device token")

	// ErrSendFailed wraps provider-side delivery failures.
	ErrSendFailed = errors.New("push: failed to send notification")

	// ErrUnknownProvider is returned when the configuration names a
	// provider this package does not implement.
	ErrUnknownProvider = errors.New("push: unknown provider")
)

package inapp

import "errors"

// ErrCenterClosed is returned when publishing to a closed center.
var ErrCenterClosed = errors.New("inapp: center is closed")

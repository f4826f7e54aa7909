package email

import "errors"

var (
	ErrNoRecipients    = errors.New("email: message has no recipients")
	ErrNoSubject       = errors.New("email: message has no subject")
	ErrNoBody          = errors.New("email: message has neither text nor html body")
	ErrInvalidAddress  = errors.New("email: invalid recipient address")
	ErrInvalidConfig   = errors.New("email: invalid configuration")
	ErrSendFailed      = errors.New("email: failed to send message")
	ErrUnknownProvider = errors.New("email: unknown provider")
)

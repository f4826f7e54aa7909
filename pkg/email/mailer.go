package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender hides the concrete email backend behind a single operation.
// Implementations translate Message into their own wire format and normalize
// the provider response into a Receipt.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Message is the backend-agnostic email shape.
type Message struct {
	To          []string     `json:"to"`
	Cc          []string     `json:"cc,omitempty"`
	Bcc         []string     `json:"bcc,omitempty"`
	ReplyTo     string       `json:"reply_to,omitempty"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text,omitempty"`
	HTML        string       `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Tag         string       `json:"tag,omitempty"`
}

// Attachment carries inline file content.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}

// Receipt is the normalized outcome of a successful send.
type Receipt struct {
	MessageID string
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate enforces the invariants every backend shares: at least one
// recipient, a subject, and at least one body. Performed uniformly before
// dispatch regardless of backend.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	for _, addr := range m.To {
		if !emailRegex.MatchString(addr) {
			return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
		}
	}
	if m.Subject == "" {
		return ErrNoSubject
	}
	if m.Text == "" && m.HTML == "" {
		return ErrNoBody
	}
	return nil
}

package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

// SMTPSender delivers mail through a store-and-relay SMTP server.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	replyTo  string
}

// NewSMTPSender creates an SMTP-backed email sender.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%w: SMTPHost is required", ErrInvalidConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: SenderEmail is required", ErrInvalidConfig)
	}
	if !emailRegex.MatchString(cfg.SenderEmail) {
		return nil, fmt.Errorf("%w: SenderEmail must be a valid email address", ErrInvalidConfig)
	}

	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SenderEmail,
		replyTo:  cfg.ReplyTo,
	}, nil
}

// Send validates the message, renders it to wire format, and relays it.
// The returned Receipt carries the generated Message-ID header value; SMTP
// itself does not assign one.
func (s *SMTPSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	raw := buildSMTPMessage(s.from, s.replyTo, messageID, msg)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	envelope := append(append(append([]string{}, msg.To...), msg.Cc...), msg.Bcc...)
	if err := smtp.SendMail(addr, auth, s.from, envelope, raw); err != nil {
		return Receipt{}, errors.Join(ErrSendFailed, err)
	}
	return Receipt{MessageID: messageID}, nil
}

// buildSMTPMessage renders headers and body to RFC 5322 wire format.
// Bcc recipients appear only in the envelope, never in the headers.
func buildSMTPMessage(from, replyTo, messageID string, msg Message) []byte {
	var b strings.Builder

	writeHeader := func(key, value string) {
		if value != "" {
			b.WriteString(key)
			b.WriteString(": ")
			b.WriteString(value)
			b.WriteString("\r\n")
		}
	}

	writeHeader("From", from)
	writeHeader("To", strings.Join(msg.To, ", "))
	writeHeader("Cc", strings.Join(msg.Cc, ", "))
	writeHeader("Reply-To", replyTo)
	writeHeader("Message-ID", messageID)
	writeHeader("Subject", msg.Subject)
	writeHeader("MIME-Version", "1.0")

	if msg.HTML != "" {
		writeHeader("Content-Type", `text/html; charset="UTF-8"`)
		b.WriteString("\r\n")
		b.WriteString(msg.HTML)
	} else {
		writeHeader("Content-Type", `text/plain; charset="UTF-8"`)
		b.WriteString("\r\n")
		b.WriteString(msg.Text)
	}

	return []byte(b.String())
}

package mail

import (
	"context"
	"errors"
	"io"
	"strings"
)

var (
	// ErrNoRecipients is returned when To/Cc/Bcc are all empty.
	ErrNoRecipients = errors.New("no recipients provided")
	// ErrNoSender is returned when both Message.From and the configured default From are empty.
	ErrNoSender = errors.New("no sender provided")
	// ErrHeaderInjection is returned when an address or the subject contains a line break.
	ErrHeaderInjection = errors.New("line break in mail header")
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the transport default is used when empty.
	From string
	// ReplyTo is an optional reply address.
	ReplyTo string
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	// TextBody is the plain-text body; preferred when HTMLBody is empty.
	TextBody string
	// HTMLBody is the optional HTML body.
	HTMLBody string
}

// Recipients returns To, Cc and Bcc combined.
func (m Message) Recipients() []string {
	out := make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	out = append(out, m.To...)
	out = append(out, m.Cc...)
	return append(out, m.Bcc...)
}

// Mail abstracts an email provider (SMTP, third-party API, etc).
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// normalize fills From and checks the message for missing or unsafe header values.
func normalize(msg Message, defaultFrom string) (Message, error) {
	if msg.From == "" {
		msg.From = defaultFrom
	}
	if msg.From == "" {
		return msg, ErrNoSender
	}
	if len(msg.Recipients()) == 0 {
		return msg, ErrNoRecipients
	}

	headers := append([]string{msg.From, msg.ReplyTo, msg.Subject}, msg.Recipients()...)
	for _, h := range headers {
		if strings.ContainsAny(h, "\r\n") {
			return msg, ErrHeaderInjection
		}
	}

	return msg, nil
}

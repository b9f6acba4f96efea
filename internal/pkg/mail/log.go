package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail that writes each message to a logger instead of sending it.
// It logs recipients and bodies in full, so it is meant for local development
// and the command line tool only.
type Log struct {
	logger      *slog.Logger
	defaultFrom string
}

// NewLog creates a Log mailer. A nil logger means slog.Default().
func NewLog(logger *slog.Logger, defaultFrom string) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger, defaultFrom: defaultFrom}
}

func (l *Log) Send(ctx context.Context, msg Message) error {
	msg, err := normalize(msg, l.defaultFrom)
	if err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "send email",
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)
	return nil
}

func (l *Log) Close() error {
	return nil
}

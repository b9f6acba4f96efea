package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
)

type ConsumeContactMessageInput struct {
	ID        int64  `validate:"required,gt=0"`
	Name      string `validate:"required,max=100,singleline"`
	Email     string `validate:"required,email"`
	Message   string `validate:"required"`
	CreatedAt int64  `validate:"gte=0"`
}

// ConsumeContactMessage forwards a submitted message to the site owner.
// Malformed events are dropped; a mail failure is returned so the broker redelivers.
func (s *Usecase) ConsumeContactMessage(ctx context.Context, in ConsumeContactMessageInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeContactMessage")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "message_id", in.ID, "error", err)
		return nil
	}

	owner := s.cfg.GetString("modules.notification.owner_email")
	if owner == "" {
		slog.WarnContext(ctx, "owner email is not configured, skip contact notification", "message_id", in.ID)
		return nil
	}

	sentAt := s.clock.Now()
	if in.CreatedAt > 0 {
		sentAt = time.UnixMilli(in.CreatedAt)
	}

	data := map[string]any{
		"id":      in.ID,
		"name":    in.Name,
		"email":   in.Email,
		"message": in.Message,
		"sent_at": sentAt.UTC().Format(time.RFC1123),
	}

	subject, err := s.renderTemplate("subject", s.templateOr("modules.notification.contact.subject", defaultContactSubject), data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render contact email subject", "message_id", in.ID, "error", err)
		return nil
	}

	body, err := s.renderTemplate("body", s.templateOr("modules.notification.contact.body", defaultContactBody), data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render contact email body", "message_id", in.ID, "error", err)
		return nil
	}

	if err := s.repoMail.Send(ctx, mail.Message{
		ReplyTo:  in.Email,
		To:       []string{owner},
		Subject:  subject,
		TextBody: body,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send contact notification email", "message_id", in.ID, "error", err)
		return err
	}

	slog.InfoContext(ctx, "contact notification email sent", "message_id", in.ID)
	return nil
}

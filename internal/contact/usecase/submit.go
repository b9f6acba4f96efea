package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gocontact/internal/contact/entity"
	otpusecase "github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/idempotency"
)

const (
	MsgSubmitted  = "Thank you. Your message has been sent."
	MsgSaveFailed = "Failed to save your message. Please try again."
	MsgDuplicate  = "This message has already been submitted."
)

type SubmitInput struct {
	IdempotencyKey string `validate:"omitempty,max=128,printascii"`
	Name           string `validate:"required,max=100,singleline,nocontrol"`
	Email          string `validate:"required,email,max=254"`
	Message        string `validate:"required,max=5000,nocontrol"`
	OTP            string `validate:"required,max=32"`
}

type SubmitOutput struct {
	ID int64
}

// Submit consumes the passcode for the email, stores the message and announces
// it. With an idempotency key a repeated submission is rejected as a conflict.
func (s *Usecase) Submit(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	ctx, span := s.startSpan(ctx, "Submit")
	defer span.End()

	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Message = strings.TrimSpace(in.Message)
	in.OTP = strings.TrimSpace(in.OTP)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var out *SubmitOutput
	run := func(ctx context.Context) error {
		var err error
		out, err = s.submit(ctx, in)
		return err
	}

	if in.IdempotencyKey == "" || s.idemp == nil {
		if err := run(ctx); err != nil {
			return nil, err
		}
		return out, nil
	}

	err := s.idemp.Exec(ctx, "contact:"+in.IdempotencyKey, run)
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.WarnContext(ctx, "duplicate contact submission", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewBusinessCause(err, MsgDuplicate, goerror.CodeConflict)
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to run idempotent contact submission", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

func (s *Usecase) submit(ctx context.Context, in SubmitInput) (*SubmitOutput, error) {
	if _, err := s.otp.Verify(ctx, otpusecase.VerifyInput{Email: in.Email, OTP: in.OTP}); err != nil {
		return nil, err
	}

	msg := entity.Message{
		ID:        s.uid.Generate(),
		Name:      in.Name,
		Email:     in.Email,
		Body:      in.Message,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repoDB.CreateMessage(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to repo create contact message", "email", msg.Email, "error", err)
		return nil, goerror.NewServerMessage(err, MsgSaveFailed)
	}

	if err := s.repoMessaging.PublishMessageSubmitted(ctx, MessageSubmittedEvent{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Body,
		CreatedAt: msg.CreatedAt.UnixMilli(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish contact message submitted", "message_id", msg.ID, "error", err)
	}

	return &SubmitOutput{ID: msg.ID}, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
)

type VerifyInput struct {
	Email string `validate:"required,max=254"`
	OTP   string `validate:"required,max=32"`
}

type VerifyOutput struct {
	Email string
}

// Verify consumes the newest record matching the email and code. A matching
// record that has expired is consumed as well and reported as invalid.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	in.OTP = strings.TrimSpace(in.OTP)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	digest, err := s.hash.Hash(in.OTP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	rec, err := s.store.FindAndDeleteMatching(ctx, in.Email, string(digest))
	if errors.Is(err, goerror.ErrNotFound) {
		s.counters.verifyFailed.Add(ctx, 1, failReason("not_matched"))
		slog.WarnContext(ctx, "otp record not matched", "email", in.Email)
		return nil, goerror.NewBusinessCause(ErrOtpNotMatched, MsgInvalidOTP, goerror.CodeInvalidOTP)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to store find and delete otp record", "email", in.Email, "error", err)
		return nil, goerror.NewServerMessage(fmt.Errorf("%w: %w", ErrStoreUnavailable, err), MsgVerifyFailed)
	}

	if rec.IsExpired(s.clock.Now()) {
		s.counters.verifyFailed.Add(ctx, 1, failReason("expired"))
		slog.WarnContext(ctx, "otp record expired", "email", in.Email, "otp_id", rec.ID, "expires_at", rec.ExpiresAt)
		return nil, goerror.NewBusinessCause(ErrOtpExpired, MsgInvalidOTP, goerror.CodeInvalidOTP)
	}

	s.counters.verified.Add(ctx, 1)

	return &VerifyOutput{Email: rec.Email}, nil
}

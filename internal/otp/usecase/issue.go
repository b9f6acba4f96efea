package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
)

type IssueInput struct {
	Email string `validate:"required,email,max=254"`
}

type IssueOutput struct {
	ExpiresAt time.Time
}

// Issue generates a passcode for the email, stores its digest unless the
// email is still cooling down, then hands the plaintext to the notifier.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.generator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	digest, err := s.hash.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec := entity.Issuance{
		Email:      in.Email,
		CodeDigest: string(digest),
		IssuedAt:   now,
		ExpiresAt:  now.Add(s.ttl()),
		Cutoff:     now.Add(-s.cooldown()),
	}

	accepted, err := s.store.InsertIfNoRecentIssuance(ctx, rec)
	if err != nil {
		slog.ErrorContext(ctx, "failed to store insert otp record", "email", in.Email, "error", err)
		return nil, goerror.NewServerMessage(fmt.Errorf("%w: %w", ErrStoreUnavailable, err), MsgStoreFailed)
	}

	if !accepted {
		s.counters.rateLimited.Add(ctx, 1)
		slog.WarnContext(ctx, "otp issuance rejected by cooldown", "email", in.Email)
		return nil, goerror.NewBusinessCause(ErrRateLimited, MsgRateLimited, goerror.CodeTooManyRequest)
	}

	if err := s.notifier.Deliver(ctx, in.Email, code); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp code", "email", in.Email, "error", err)
		return nil, goerror.NewServerMessage(fmt.Errorf("%w: %w", ErrDeliveryFailed, err), MsgDeliveryFailed)
	}

	s.counters.issued.Add(ctx, 1)

	return &IssueOutput{ExpiresAt: rec.ExpiresAt}, nil
}

package usecase

import (
	"context"

	"github.com/shandysiswandi/gocontact/internal/contact/entity"
	otpusecase "github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/idempotency"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type MessageSubmittedEvent struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	CreatedAt int64
}

type repoDB interface {
	CreateMessage(ctx context.Context, msg entity.Message) error
}

type repoMessaging interface {
	PublishMessageSubmitted(ctx context.Context, msg MessageSubmittedEvent) error
}

type otpVerifier interface {
	Verify(ctx context.Context, in otpusecase.VerifyInput) (*otpusecase.VerifyOutput, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	otp           otpVerifier
	idemp         idempotency.Idempotency
	validator     validator.Validator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTP           otpVerifier
	// Idempotency is optional; without it the Idempotency-Key header is ignored.
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	UID         uid.NumberID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("contact.usecase").Start(ctx, name)
}

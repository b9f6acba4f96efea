package contact

import (
	"context"

	"github.com/shandysiswandi/gocontact/internal/contact/inbound"
	"github.com/shandysiswandi/gocontact/internal/contact/outbound/db"
	"github.com/shandysiswandi/gocontact/internal/contact/outbound/mq"
	"github.com/shandysiswandi/gocontact/internal/contact/usecase"
	otpusecase "github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/idempotency"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
)

type otpVerifier interface {
	Verify(ctx context.Context, in otpusecase.VerifyInput) (*otpusecase.VerifyOutput, error)
}

type Dependency struct {
	DBConn     db.PgxConn                 `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	OTP        otpVerifier                `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	// Idempotency is nil when Redis is not configured.
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		OTP:           dep.OTP,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

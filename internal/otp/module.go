package otp

import (
	"context"

	pqotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/gocontact/internal/otp/inbound"
	"github.com/shandysiswandi/gocontact/internal/otp/outbound/email"
	"github.com/shandysiswandi/gocontact/internal/otp/outbound/store"
	"github.com/shandysiswandi/gocontact/internal/otp/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocontact/internal/pkg/hash"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/shandysiswandi/gocontact/internal/pkg/otp"
	"github.com/shandysiswandi/gocontact/internal/pkg/router"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
)

type Dependency struct {
	// Ctx bounds the reaper job; nil skips it.
	Ctx        context.Context
	Store      store.Store                `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Hash       hash.Hash                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// Router and Goroutine are optional so the CLI can build the usecase alone.
	Router    *router.Router
	Goroutine *goroutine.Manager
}

// New wires the passcode usecase, registers its routes and reaper when their
// dependencies are present, and returns the usecase for other modules.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	notifier, err := email.New(dep.Mail, dep.Config, dep.Instrument)
	if err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		Store:      dep.Store,
		Notifier:   notifier,
		Generator:  otp.NewNumeric(pqotp.Digits(dep.Config.GetInt("modules.otp.code_digits"))),
		Hash:       dep.Hash,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	if dep.Router != nil {
		inbound.RegisterHTTPEndpoint(dep.Router, uc)
	}
	if dep.Ctx != nil && dep.Goroutine != nil {
		inbound.RegisterJob(dep.Ctx, dep.Config, dep.Goroutine, uc)
	}

	return uc, nil
}

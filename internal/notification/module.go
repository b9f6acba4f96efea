package notification

import (
	"context"

	"github.com/shandysiswandi/gocontact/internal/notification/inbound"
	"github.com/shandysiswandi/gocontact/internal/notification/outbound/email"
	"github.com/shandysiswandi/gocontact/internal/notification/usecase"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/shandysiswandi/gocontact/internal/pkg/messaging"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context            `validate:"required"`
	Messaging  messaging.Consumer         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoMail := email.New(dep.Mail, dep.Config.GetString("modules.notification.from"), dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		Config:     dep.Config,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		RepoMail:   repoMail,
		Instrument: dep.Instrument,
	})

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}

package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gocontact/internal/contact"
	"github.com/shandysiswandi/gocontact/internal/notification"
	"github.com/shandysiswandi/gocontact/internal/otp"
)

func (a *App) initModules() {
	otpUC, err := otp.New(otp.Dependency{
		Ctx:        a.ctx,
		Store:      a.otpStore,
		Mail:       a.mail,
		Hash:       a.hash,
		Config:     a.config,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
		Router:     a.router,
		Goroutine:  a.goroutine,
	})
	if err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.contact.enabled") {
		if err := contact.New(contact.Dependency{
			DBConn:      a.pgConn(),
			Messaging:   a.messaging,
			OTP:         otpUC,
			Router:      a.router,
			Validator:   a.validator,
			UID:         a.uid,
			Clock:       a.clock,
			Instrument:  a.ins,
			Idempotency: a.idemp,
		}); err != nil {
			slog.Error("failed to init module contact", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}

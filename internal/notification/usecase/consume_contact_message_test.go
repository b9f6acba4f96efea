package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsecase(t *testing.T, yaml string, mailer *mail.Memory) *Usecase {
	t.Helper()
	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return NewNotification(Dependency{
		Config:     cfg,
		Clock:      clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Validator:  v,
		RepoMail:   mailer,
		Instrument: instrument.NewNoop(),
	})
}

const ownerConfig = `
modules:
  notification:
    owner_email: owner@example.com
`

var submitted = ConsumeContactMessageInput{
	ID:        11,
	Name:      "Jane Doe",
	Email:     "jane@example.com",
	Message:   "I would like a quote.",
	CreatedAt: time.Date(2026, 3, 1, 8, 59, 0, 0, time.UTC).UnixMilli(),
}

func TestUsecase_ConsumeContactMessage(t *testing.T) {
	t.Run("emails the owner with reply-to", func(t *testing.T) {
		// Arrange
		mailer := mail.NewMemory("noreply@example.com")
		uc := newUsecase(t, ownerConfig, mailer)

		// Act
		err := uc.ConsumeContactMessage(context.Background(), submitted)

		// Assert
		require.NoError(t, err)
		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"owner@example.com"}, sent[0].To)
		assert.Equal(t, "jane@example.com", sent[0].ReplyTo)
		assert.Equal(t, "New contact message from Jane Doe", sent[0].Subject)
		assert.Contains(t, sent[0].TextBody, "I would like a quote.")
		assert.Contains(t, sent[0].TextBody, "Sun, 01 Mar 2026 08:59:00 UTC")
	})

	t.Run("custom templates", func(t *testing.T) {
		mailer := mail.NewMemory("noreply@example.com")
		uc := newUsecase(t, `
modules:
  notification:
    owner_email: owner@example.com
    contact:
      subject: "[site] {{.email}}"
      body: "#{{.id}}: {{.message}}"
`, mailer)

		require.NoError(t, uc.ConsumeContactMessage(context.Background(), submitted))

		sent := mailer.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "[site] jane@example.com", sent[0].Subject)
		assert.Equal(t, "#11: I would like a quote.", sent[0].TextBody)
	})

	t.Run("invalid event is dropped", func(t *testing.T) {
		mailer := mail.NewMemory("noreply@example.com")
		uc := newUsecase(t, ownerConfig, mailer)

		in := submitted
		in.Email = "not-an-email"

		assert.NoError(t, uc.ConsumeContactMessage(context.Background(), in))
		assert.Empty(t, mailer.Sent())
	})

	t.Run("no owner configured", func(t *testing.T) {
		mailer := mail.NewMemory("noreply@example.com")
		uc := newUsecase(t, "{}", mailer)

		assert.NoError(t, uc.ConsumeContactMessage(context.Background(), submitted))
		assert.Empty(t, mailer.Sent())
	})

	t.Run("mail failure is returned for redelivery", func(t *testing.T) {
		mailer := mail.NewMemory("noreply@example.com")
		boom := errors.New("smtp down")
		mailer.SetErr(boom)
		uc := newUsecase(t, ownerConfig, mailer)

		err := uc.ConsumeContactMessage(context.Background(), submitted)

		assert.ErrorIs(t, err, boom)
	})
}

package email

import (
	"bytes"
	"context"
	"text/template"

	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultSubject = "Your OTP Code"
	DefaultBody    = "Your OTP code is {{.Code}}. It will expire in {{.TTLMinutes}} minutes."
)

type templateData struct {
	Code       string
	Email      string
	TTLMinutes int
}

// Notifier delivers passcodes by email.
type Notifier struct {
	client     mail.Mail
	subject    *template.Template
	body       *template.Template
	ttlMinutes int
	ins        instrument.Instrumentation
}

// New parses the subject and body templates from modules.otp.email.*.
func New(client mail.Mail, cfg config.Config, ins instrument.Instrumentation) (*Notifier, error) {
	subject, err := parse("subject", cfg.GetString("modules.otp.email.subject"), DefaultSubject)
	if err != nil {
		return nil, err
	}

	body, err := parse("body", cfg.GetString("modules.otp.email.body"), DefaultBody)
	if err != nil {
		return nil, err
	}

	ttl := cfg.GetInt("modules.otp.ttl_minutes")
	if ttl <= 0 {
		ttl = 5
	}

	return &Notifier{client: client, subject: subject, body: body, ttlMinutes: ttl, ins: ins}, nil
}

func parse(name, tpl, fallback string) (*template.Template, error) {
	if tpl == "" {
		tpl = fallback
	}
	return template.New(name).Option("missingkey=zero").Parse(tpl)
}

func (n *Notifier) Deliver(ctx context.Context, email, code string) error {
	ctx, span := n.ins.Tracer("otp.outbound.email").Start(ctx, "Deliver")
	defer span.End()

	data := templateData{Code: code, Email: email, TTLMinutes: n.ttlMinutes}

	var subject, body bytes.Buffer
	if err := n.subject.Execute(&subject, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := n.body.Execute(&body, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := n.client.Send(ctx, mail.Message{
		To:       []string{email},
		Subject:  subject.String(),
		TextBody: body.String(),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/clock"
	"github.com/shandysiswandi/gocontact/internal/pkg/config"
	"github.com/shandysiswandi/gocontact/internal/pkg/hash"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/otp"
	"github.com/shandysiswandi/gocontact/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultCooldown = 60 * time.Second
	defaultTTL      = 5 * time.Minute
)

type store interface {
	InsertIfNoRecentIssuance(ctx context.Context, in entity.Issuance) (bool, error)
	FindAndDeleteMatching(ctx context.Context, email, digest string) (*entity.OtpRecord, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type notifier interface {
	Deliver(ctx context.Context, email, code string) error
}

type counters struct {
	issued       metric.Int64Counter
	rateLimited  metric.Int64Counter
	verified     metric.Int64Counter
	verifyFailed metric.Int64Counter
	swept        metric.Int64Counter
}

type Usecase struct {
	store     store
	notifier  notifier
	generator otp.Generator
	hash      hash.Hash
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	ins       instrument.Instrumentation
	counters  counters
}

type Dependency struct {
	Store      store
	Notifier   notifier
	Generator  otp.Generator
	Hash       hash.Hash
	Validator  validator.Validator
	Config     config.Config
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("otp.usecase")

	return &Usecase{
		store:     dep.Store,
		notifier:  dep.Notifier,
		generator: dep.Generator,
		hash:      dep.Hash,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		counters: counters{
			issued:       newCounter(meter, "otp.issued", "OTP codes issued and delivered"),
			rateLimited:  newCounter(meter, "otp.rate_limited", "OTP issuances rejected by the cooldown"),
			verified:     newCounter(meter, "otp.verified", "OTP codes verified"),
			verifyFailed: newCounter(meter, "otp.verify_failed", "OTP verifications rejected"),
			swept:        newCounter(meter, "otp.swept", "Expired OTP records removed by the reaper"),
		},
	}
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

func (s *Usecase) cooldown() time.Duration {
	if d := s.cfg.GetSecond("modules.otp.cooldown_seconds"); d > 0 {
		return d
	}
	return defaultCooldown
}

func (s *Usecase) ttl() time.Duration {
	if d := s.cfg.GetMinute("modules.otp.ttl_minutes"); d > 0 {
		return d
	}
	return defaultTTL
}

func failReason(reason string) metric.AddOption {
	return metric.WithAttributes(attribute.String("reason", reason))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

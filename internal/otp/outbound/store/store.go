// Package store persists OTP records. Every driver provides the same two
// atomic primitives: a conditional insert gated on the last issuance for an
// email, and a find-and-delete that consumes the matching record with the
// latest expiry.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/uid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var ErrMissingConnection = errors.New("store: connection for driver is not configured")

// Store is the persistence contract of the OTP usecases.
type Store interface {
	InsertIfNoRecentIssuance(ctx context.Context, in entity.Issuance) (bool, error)
	FindAndDeleteMatching(ctx context.Context, email, digest string) (*entity.OtpRecord, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Options carries the connections a driver may need. Only the one matching
// the selected driver has to be set.
type Options struct {
	Postgres   PgxConn
	Redis      redis.UniversalClient
	SQLite     *sql.DB
	UID        uid.NumberID
	Instrument instrument.Instrumentation
}

// NewFromDriver builds the Store for driver.
func NewFromDriver(driver string, opts Options) (Store, error) {
	if opts.Instrument == nil {
		opts.Instrument = instrument.NewNoop()
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		if opts.Postgres == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingConnection, DriverPostgres)
		}
		return NewPostgres(opts.Postgres, opts.Instrument), nil
	case DriverRedis:
		if opts.Redis == nil || opts.UID == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingConnection, DriverRedis)
		}
		return NewRedis(opts.Redis, opts.UID, opts.Instrument), nil
	case DriverSQLite:
		if opts.SQLite == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingConnection, DriverSQLite)
		}
		return NewSQLite(opts.SQLite, opts.Instrument), nil
	case "", DriverMemory:
		return NewMemory(opts.Instrument), nil
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", driver)
	}
}

type tracer struct {
	ins instrument.Instrumentation
}

func (t tracer) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.ins.Tracer("otp.outbound.store").Start(ctx, name)
}

func (t tracer) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

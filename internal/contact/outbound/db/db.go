package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/gocontact/internal/contact/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PgxConn is satisfied by *pgxpool.Pool and pgxmock.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const queryCreateMessage = `
INSERT INTO contact_messages (id, name, email, message, created_at)
VALUES ($1, $2, $3, $4, $5)`

type DB struct {
	conn PgxConn
	ins  instrument.Instrumentation
}

func NewDB(conn PgxConn, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// - 23505 unique violation → goerror.ErrConflict
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("contact.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateMessage(ctx context.Context, msg entity.Message) (err error) {
	ctx, span := s.startSpan(ctx, "CreateMessage")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryCreateMessage, msg.ID, msg.Name, msg.Email, msg.Body, msg.CreatedAt)
	err = s.mapError(err)
	return err
}

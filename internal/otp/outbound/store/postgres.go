package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
)

// PgxConn is satisfied by *pgxpool.Pool, *pgx.Conn and pgxmock.
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// The gate row is upserted only when the previous issuance is at or before the
// cutoff. A rejected upsert returns no row, so the record insert selects nothing.
const queryInsertIfNoRecentIssuance = `
WITH gate AS (
	INSERT INTO otp_issuances (email, last_issued_at, cooldown_until)
	VALUES ($1, $3, $6)
	ON CONFLICT (email) DO UPDATE
		SET last_issued_at = EXCLUDED.last_issued_at,
			cooldown_until = EXCLUDED.cooldown_until
		WHERE otp_issuances.last_issued_at <= $5
	RETURNING email
)
INSERT INTO otp_records (email, code_digest, issued_at, expires_at)
SELECT email, $2::text, $3::timestamptz, $4::timestamptz FROM gate
RETURNING id`

const queryFindAndDeleteMatching = `
DELETE FROM otp_records
WHERE id = (
	SELECT id FROM otp_records
	WHERE email = $1 AND code_digest = $2
	ORDER BY expires_at DESC, id DESC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, email, code_digest, issued_at, expires_at`

const queryDeleteExpired = `
WITH gates AS (
	DELETE FROM otp_issuances WHERE cooldown_until <= $1
)
DELETE FROM otp_records WHERE expires_at <= $1`

type Postgres struct {
	tracer
	conn PgxConn
}

func NewPostgres(conn PgxConn, ins instrument.Instrumentation) *Postgres {
	return &Postgres{tracer: tracer{ins: ins}, conn: conn}
}

func (p *Postgres) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (p *Postgres) InsertIfNoRecentIssuance(ctx context.Context, in entity.Issuance) (ok bool, err error) {
	ctx, span := p.startSpan(ctx, "Postgres.InsertIfNoRecentIssuance")
	defer func() { p.endSpan(span, err) }()

	var id int64
	err = p.conn.QueryRow(ctx, queryInsertIfNoRecentIssuance,
		in.Email, in.CodeDigest, in.IssuedAt, in.ExpiresAt, in.Cutoff, in.CooldownUntil(),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (p *Postgres) FindAndDeleteMatching(ctx context.Context, email, digest string) (rec *entity.OtpRecord, err error) {
	ctx, span := p.startSpan(ctx, "Postgres.FindAndDeleteMatching")
	defer func() { p.endSpan(span, err) }()

	var r entity.OtpRecord
	err = p.conn.QueryRow(ctx, queryFindAndDeleteMatching, email, digest).
		Scan(&r.ID, &r.Email, &r.CodeDigest, &r.IssuedAt, &r.ExpiresAt)
	if err != nil {
		return nil, p.mapError(err)
	}

	return &r, nil
}

func (p *Postgres) DeleteExpired(ctx context.Context, before time.Time) (n int64, err error) {
	ctx, span := p.startSpan(ctx, "Postgres.DeleteExpired")
	defer func() { p.endSpan(span, err) }()

	tag, err := p.conn.Exec(ctx, queryDeleteExpired, before)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

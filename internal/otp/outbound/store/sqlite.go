package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shandysiswandi/gocontact/internal/otp/entity"
	"github.com/shandysiswandi/gocontact/internal/pkg/goerror"
	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
)

// Times are stored as unix milliseconds.

const sqliteUpsertGate = `
INSERT INTO otp_issuances (email, last_issued_at, cooldown_until) VALUES (?, ?, ?)
ON CONFLICT (email) DO UPDATE
	SET last_issued_at = excluded.last_issued_at,
		cooldown_until = excluded.cooldown_until
	WHERE otp_issuances.last_issued_at <= ?`

const sqliteInsertRecord = `
INSERT INTO otp_records (email, code_digest, issued_at, expires_at) VALUES (?, ?, ?, ?)`

const sqliteFindAndDeleteMatching = `
DELETE FROM otp_records
WHERE id = (
	SELECT id FROM otp_records
	WHERE email = ? AND code_digest = ?
	ORDER BY expires_at DESC, id DESC
	LIMIT 1
)
RETURNING id, email, code_digest, issued_at, expires_at`

type SQLite struct {
	tracer
	db *sql.DB
}

// NewSQLite expects a handle opened with immediate transactions, so the gate
// check and the insert run under the database write lock.
func NewSQLite(db *sql.DB, ins instrument.Instrumentation) *SQLite {
	return &SQLite{tracer: tracer{ins: ins}, db: db}
}

func (s *SQLite) InsertIfNoRecentIssuance(ctx context.Context, in entity.Issuance) (ok bool, err error) {
	ctx, span := s.startSpan(ctx, "SQLite.InsertIfNoRecentIssuance")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() {
		if !ok || err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	res, err := tx.ExecContext(ctx, sqliteUpsertGate,
		in.Email, in.IssuedAt.UnixMilli(), in.CooldownUntil().UnixMilli(), in.Cutoff.UnixMilli(),
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err = tx.ExecContext(ctx, sqliteInsertRecord,
		in.Email, in.CodeDigest, in.IssuedAt.UnixMilli(), in.ExpiresAt.UnixMilli(),
	); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, err
	}

	return true, nil
}

func (s *SQLite) FindAndDeleteMatching(ctx context.Context, email, digest string) (rec *entity.OtpRecord, err error) {
	ctx, span := s.startSpan(ctx, "SQLite.FindAndDeleteMatching")
	defer func() { s.endSpan(span, err) }()

	var (
		r                   entity.OtpRecord
		issuedMs, expiresMs int64
	)
	err = s.db.QueryRowContext(ctx, sqliteFindAndDeleteMatching, email, digest).
		Scan(&r.ID, &r.Email, &r.CodeDigest, &issuedMs, &expiresMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.IssuedAt = time.UnixMilli(issuedMs)
	r.ExpiresAt = time.UnixMilli(expiresMs)

	return &r, nil
}

func (s *SQLite) DeleteExpired(ctx context.Context, before time.Time) (n int64, err error) {
	ctx, span := s.startSpan(ctx, "SQLite.DeleteExpired")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	cut := before.UnixMilli()
	res, err := tx.ExecContext(ctx, `DELETE FROM otp_records WHERE expires_at <= ?`, cut)
	if err != nil {
		return 0, err
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM otp_issuances WHERE cooldown_until <= ?`, cut); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return n, nil
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

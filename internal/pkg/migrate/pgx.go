package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"
)

const pgTableQuery = `CREATE TABLE IF NOT EXISTS schema_migrations (
	sequence    INTEGER PRIMARY KEY,
	filename    TEXT NOT NULL,
	app_version TEXT NOT NULL,
	applied_at  TIMESTAMPTZ NOT NULL
)`

// pgLockKey serialises concurrent migrators through a transaction-level advisory lock.
const pgLockKey int64 = 0x676f636f6e74

// Beginner starts a pgx transaction; *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RunPgx applies the pending migrations of fileSys to PostgreSQL inside one
// transaction. It returns the migrations it applied.
func RunPgx(ctx context.Context, db Beginner, fileSys fs.FS, meta Metadata) (result []Migration, err error) {
	pgTx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rErr := pgTx.Rollback(context.WithoutCancel(ctx)); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rErr)
			}
		}
	}()

	if _, err = pgTx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, pgLockKey); err != nil {
		return nil, fmt.Errorf("failed to take migration lock: %w", err)
	}
	if _, err = pgTx.Exec(ctx, pgTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	result, err = run(ctx, pgxRunner{tx: pgTx}, fileSys, meta)
	if err != nil {
		return nil, err
	}

	if err = pgTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

type pgxRunner struct {
	tx pgx.Tx
}

func (r pgxRunner) exec(ctx context.Context, query string) error {
	_, err := r.tx.Exec(ctx, query)
	return err
}

func (r pgxRunner) applied(ctx context.Context) ([]Migration, error) {
	rows, err := r.tx.Query(ctx, `SELECT sequence, filename, app_version, applied_at FROM schema_migrations ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Migration, error) {
		var m Migration
		err := row.Scan(&m.Sequence, &m.Filename, &m.Metadata.AppVersion, &m.Metadata.Timestamp)
		return m, err
	})
}

func (r pgxRunner) record(ctx context.Context, m Migration) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO schema_migrations (sequence, filename, app_version, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Sequence, m.Filename, m.Metadata.AppVersion, m.Metadata.Timestamp,
	)
	return err
}

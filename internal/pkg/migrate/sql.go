package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
)

const sqliteTableQuery = `CREATE TABLE IF NOT EXISTS migrations (
	sequence    INTEGER PRIMARY KEY,
	filename    TEXT NOT NULL,
	app_version TEXT NOT NULL,
	timestamp   TIMESTAMP NOT NULL
)`

// RunSQL applies the pending migrations of fileSys to a database/sql handle
// (SQLite placeholders) inside one transaction. It returns the migrations it applied.
func RunSQL(ctx context.Context, db *sql.DB, fileSys fs.FS, meta Metadata) ([]Migration, error) {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := sqlTx.ExecContext(ctx, sqliteTableQuery); err != nil {
		return nil, rollbackSQL(sqlTx, fmt.Errorf("failed to create migrations table: %w", err))
	}

	result, err := run(ctx, sqlRunner{tx: sqlTx}, fileSys, meta)
	if err != nil {
		return nil, rollbackSQL(sqlTx, err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

type sqlRunner struct {
	tx *sql.Tx
}

func (r sqlRunner) exec(ctx context.Context, query string) error {
	_, err := r.tx.ExecContext(ctx, query)
	return err
}

func (r sqlRunner) applied(ctx context.Context) ([]Migration, error) {
	rows, err := r.tx.QueryContext(ctx, `SELECT sequence, filename, app_version, timestamp FROM migrations ORDER BY sequence`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	migrations := make([]Migration, 0)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Sequence, &m.Filename, &m.Metadata.AppVersion, &m.Metadata.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		migrations = append(migrations, m)
	}

	return migrations, rows.Err()
}

func (r sqlRunner) record(ctx context.Context, m Migration) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO migrations (sequence, filename, app_version, timestamp) VALUES (?, ?, ?, ?)`,
		m.Sequence, m.Filename, m.Metadata.AppVersion, m.Metadata.Timestamp,
	)
	return err
}

func rollbackSQL(tx *sql.Tx, err error) error {
	if rErr := tx.Rollback(); rErr != nil {
		return errors.Join(err, rErr)
	}
	return err
}

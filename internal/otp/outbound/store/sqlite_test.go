package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shandysiswandi/gocontact/internal/pkg/instrument"
	"github.com/shandysiswandi/gocontact/internal/pkg/migrate"
	"github.com/shandysiswandi/gocontact/internal/pkg/sqlite"
	"github.com/shandysiswandi/gocontact/migrations"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()

	// A file database lets the concurrent cases exercise the write lock.
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "otp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrate.RunSQL(context.Background(), db, migrations.SQLite, migrate.Metadata{AppVersion: "test"})
	require.NoError(t, err)

	return NewSQLite(db, instrument.NewNoop())
}

func TestSQLite(t *testing.T) {
	runStoreSuite(t, newSQLiteStore, suiteOptions{reaps: true})
}

// Package migrate applies an ordered set of embedded .sql files exactly once,
// recording each applied file in a migrations table of the target database.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// Migration is a migration that was applied.
type Migration struct {
	// Sequence is the number of the migration. Starts at 0.
	Sequence int
	Filename string
	Metadata Metadata
}

// Metadata is stored next to every applied migration to help debugging.
type Metadata struct {
	AppVersion string
	Timestamp  time.Time
}

var (
	// ErrMigrationsMismatch indicates the applied migrations differ from the available files.
	ErrMigrationsMismatch = errors.New("migrations mismatch")
)

// MigrationError is an error that occurred while running a migration.
type MigrationError struct {
	Sequence int
	Filename string
	Err      error
}

func (m MigrationError) Error() string {
	return fmt.Sprintf("migration [%d] %q failed: %v", m.Sequence, m.Filename, m.Err)
}

func (m MigrationError) Unwrap() error {
	return m.Err
}

// tx is the slice of a database transaction the runner needs.
type tx interface {
	exec(ctx context.Context, query string) error
	applied(ctx context.Context) ([]Migration, error)
	record(ctx context.Context, m Migration) error
}

type file struct {
	name    string
	content string
}

func run(ctx context.Context, t tx, fileSys fs.FS, meta Metadata) ([]Migration, error) {
	files, err := loadFiles(fileSys)
	if err != nil {
		return nil, err
	}

	ranBefore, err := t.applied(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := pendingFiles(ranBefore, files)
	if err != nil {
		return nil, err
	}

	ranNow := make([]Migration, 0, len(pending))
	for i, f := range pending {
		m := Migration{Sequence: len(ranBefore) + i, Filename: f.name, Metadata: meta}

		if err := t.exec(ctx, f.content); err != nil {
			return nil, MigrationError{Sequence: m.Sequence, Filename: f.name, Err: err}
		}
		if err := t.record(ctx, m); err != nil {
			return nil, fmt.Errorf("failed to record migration: %w", err)
		}

		ranNow = append(ranNow, m)
	}

	return ranNow, nil
}

// pendingFiles checks that ranBefore is a prefix of files and returns the rest.
func pendingFiles(ranBefore []Migration, files []file) ([]file, error) {
	if len(ranBefore) > len(files) {
		return nil, fmt.Errorf(
			"found %d existing migrations but only have %d files: %w",
			len(ranBefore), len(files), ErrMigrationsMismatch,
		)
	}

	for i, before := range ranBefore {
		if i != before.Sequence {
			return nil, fmt.Errorf("migration sequence mismatch, wanted %d got %d: %w", i, before.Sequence, ErrMigrationsMismatch)
		}
		if before.Filename != files[i].name {
			return nil, fmt.Errorf(
				"migration %d had filename %s, but now encountering %s: %w",
				i, before.Filename, files[i].name, ErrMigrationsMismatch,
			)
		}
	}

	return files[len(ranBefore):], nil
}

// loadFiles reads the .sql files in the root of fileSys in lexical order.
func loadFiles(fileSys fs.FS) ([]file, error) {
	entries, err := fs.ReadDir(fileSys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	files := make([]file, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		content, err := fs.ReadFile(fileSys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %q: %w", entry.Name(), err)
		}

		files = append(files, file{name: entry.Name(), content: string(content)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	return files, nil
}

// Package sqlite opens database/sql handles for github.com/mattn/go-sqlite3
// with settings that suit a single-node service.
package sqlite

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// WAL lets reads proceed during a write, the busy timeout waits for locks
	// instead of failing, and immediate transactions take the write lock up front.
	writeOptions = "_foreign_keys=on&_journal_mode=wal&_busy_timeout=5000&_txlock=immediate"
	memOptions   = "_foreign_keys=on&_txlock=immediate"
)

// Open opens dsn for reading and writing through a single pooled connection, so
// every write is serialised by the pool. ":memory:" gives a private in-memory
// database that lives as long as the handle.
func Open(dsn string) (*sql.DB, error) {
	opts := writeOptions
	if strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		opts = memOptions
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	db, err := sql.Open("sqlite3", dsn+sep+opts)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	return db, nil
}

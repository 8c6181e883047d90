// Package store is the client's local persistent store: named collections of
// JSON records in SQLite, each with optional secondary indexes.
//
// A Store that could not be opened is still returned; IsAvailable reports
// false and every operation fails with ErrUnavailable, which callers treat
// as "run online-only" rather than as a fatal error.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/client/migrations"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

var ErrUnavailable = errors.New("local store unavailable")

type Store struct {
	db     *sql.DB
	q      dbx.DBTX
	inTx   bool
	err    error
	logger logging.Logger
}

// gooseUpContext is a seam for testing migration failures.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
// It never fails; see IsAvailable.
func Open(ctx context.Context, dsn string, logger logging.Logger) *Store {
	logger = logger.With("module", "store")

	s, err := open(ctx, dsn)
	if err != nil {
		logger.Warn(ctx, "local store unavailable, running online-only", "dsn", dsn, "error", err)
		return &Store{err: err, logger: logger}
	}
	s.logger = logger
	return s
}

func open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers, so each call and each Tx is atomic.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db, q: db}, nil
}

// Unavailable returns a Store that rejects every call, e.g. for online-only
// clients started with persistence disabled.
func Unavailable(reason error) *Store {
	return &Store{err: reason, logger: logging.Nop()}
}

// IsAvailable reports whether the local database is usable.
func (s *Store) IsAvailable() bool {
	return s != nil && s.db != nil
}

// Err returns the reason the store is unavailable, if any.
func (s *Store) Err() error {
	if s == nil {
		return ErrUnavailable
	}
	return s.err
}

func (s *Store) Close() error {
	if !s.IsAvailable() || s.inTx {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database still answers.
func (s *Store) Ping(ctx context.Context) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}
	return s.db.PingContext(ctx)
}

// Tx runs fn against a store bound to one transaction. Every collection call
// made through tx commits or rolls back together. Nested calls reuse the
// outer transaction.
func (s *Store) Tx(ctx context.Context, fn func(tx *Store) error) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}
	if s.inTx {
		return fn(s)
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, q dbx.DBTX) error {
		return fn(&Store{db: s.db, q: q, inTx: true, logger: s.logger})
	})
}

// atomic runs fn in the current transaction, or in a new one.
func (s *Store) atomic(ctx context.Context, fn func(q dbx.DBTX) error) error {
	if s.inTx {
		return fn(s.q)
	}
	return dbx.WithTx(ctx, s.db, nil, func(_ context.Context, q dbx.DBTX) error {
		return fn(q)
	})
}

// NextSequence returns the next value (starting at 1) of the named counter.
func (s *Store) NextSequence(ctx context.Context, name string) (int64, error) {
	if !s.IsAvailable() {
		return 0, ErrUnavailable
	}
	var v int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value
	`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return v, nil
}

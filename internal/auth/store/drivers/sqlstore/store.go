// Package sqlstore implements store.Store over database/sql. The sqlite and
// postgres drivers supply the connection and a Dialect; the queries are
// shared.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bormonoff/Auth-Service/internal/auth/store"
)

// Dialect captures what differs between the supported databases.
type Dialect interface {
	// Rebind rewrites '?' placeholders into the driver's syntax.
	Rebind(query string) string

	// IsUniqueViolation reports whether err is a unique or primary key
	// constraint failure.
	IsUniqueViolation(err error) bool

	// LockFingerprint is appended to the fingerprint lookup inside a
	// transaction; empty when the database serialises writers anyway.
	LockFingerprint() string
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Migrator applies the embedded schema.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sql.DB
	d       Dialect
	migrate Migrator
}

// New wraps an open database. The Store takes ownership of db.
func New(db *sql.DB, d Dialect, m Migrator) *Store {
	return &Store{db: db, d: d, migrate: m}
}

// DB exposes the underlying handle, e.g. for health checks in tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return errors.New("sqlstore: no migrator configured")
	}
	return s.migrate(s.db)
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: begin: %w", err)
	}
	return &txStore{tx: tx, q: queries{db: tx, d: s.d, inTx: true}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) q() queries { return queries{db: s.db, d: s.d} }

func (s *Store) Users() store.Users                 { return &usersRepo{s.q()} }
func (s *Store) Roles() store.Roles                 { return &rolesRepo{s.q()} }
func (s *Store) Grants() store.Grants               { return &grantsRepo{s.q()} }
func (s *Store) Fingerprints() store.Fingerprints   { return &fingerprintsRepo{s.q()} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{s.q()} }

type txStore struct {
	tx *sql.Tx
	q  queries
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the connection.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error { return sql.ErrTxDone }

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                 { return &usersRepo{t.q} }
func (t *txStore) Roles() store.Roles                 { return &rolesRepo{t.q} }
func (t *txStore) Grants() store.Grants               { return &grantsRepo{t.q} }
func (t *txStore) Fingerprints() store.Fingerprints   { return &fingerprintsRepo{t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{t.q} }

// queries binds a connection or transaction to a dialect.
type queries struct {
	db   DBTX
	d    Dialect
	inTx bool
}

func (q queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := q.db.ExecContext(ctx, q.d.Rebind(query), args...)
	return res, q.mapErr(err)
}

// execOne runs a statement that must touch exactly one row.
func (q queries) execOne(ctx context.Context, query string, args ...any) error {
	res, err := q.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (q queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.d.Rebind(query), args...)
}

func (q queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.db.QueryContext(ctx, q.d.Rebind(query), args...)
	return rows, q.mapErr(err)
}

func (q queries) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case q.d.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", store.ErrAlreadyExists, err)
	default:
		return err
	}
}

func (q queries) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := q.queryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, q.mapErr(err)
	}
	return n, nil
}

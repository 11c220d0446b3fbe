// Package sqlstore implements store.Store on top of database/sql. The sqlite
// and postgres drivers share it and only differ in how they open the
// connection, which migrations they embed and their Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/todopilot/pilot/internal/pilot/store"
)

// MigrateFunc applies the driver's embedded migrations to db.
type MigrateFunc func(db *sql.DB) error

var errNoRowsAffected = errors.New("sqlstore: no rows affected")

type Store struct {
	db      *sql.DB
	q       *queries
	migrate MigrateFunc
}

func New(db *sql.DB, d Dialect, migrate MigrateFunc) *Store {
	return &Store{
		db:      db,
		q:       &queries{db: db, d: d},
		migrate: migrate,
	}
}

// DB exposes the underlying pool for drivers and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, q: &queries{db: tx, d: s.q.d}}, nil
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

func (s *Store) Users() store.Users             { return &usersRepo{q: s.q} }
func (s *Store) Todos() store.Todos             { return &todosRepo{q: s.q} }
func (s *Store) Teams() store.Teams             { return &teamsRepo{q: s.q} }
func (s *Store) Invitations() store.Invitations { return &invitationsRepo{q: s.q} }
func (s *Store) TeamTodos() store.TeamTodos     { return &teamTodosRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, errNoRowsAffected) {
		return store.ErrNotFound
	}
	return err
}

func (q *queries) mapWriteErr(err error) error {
	if q.d.uniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return mapNotFound(err)
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// utc normalises timestamps before they are written so both drivers store
// comparable values.
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

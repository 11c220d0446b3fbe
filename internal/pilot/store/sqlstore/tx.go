package sqlstore

import (
	"context"
	"database/sql"

	"github.com/todopilot/pilot/internal/pilot/store"
)

type txStore struct {
	tx *sql.Tx
	q  *queries
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx

func (t *txStore) Users() store.Users             { return &usersRepo{q: t.q} }
func (t *txStore) Todos() store.Todos             { return &todosRepo{q: t.q} }
func (t *txStore) Teams() store.Teams             { return &teamsRepo{q: t.q} }
func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{q: t.q} }
func (t *txStore) TeamTodos() store.TeamTodos     { return &teamTodosRepo{q: t.q} }

// Package pgx implements the Postgres-backed storage: file metadata,
// recognized pages, prompt templates, and model endpoint/credential
// configuration.
package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// Store reads and writes the relational side of the platform. It is safe
// for concurrent use when backed by a pgxpool.Pool.
type Store struct {
	conn pgxIConn
}

// New creates a Store on an existing connection or pool.
func New(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

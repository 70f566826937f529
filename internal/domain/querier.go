package domain

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Repository methods take a Querier so the same method runs inside the
// caller's transaction or directly against the pool.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is an open store transaction. *sql.Tx satisfies it.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// DB opens transactions and serves non-transactional reads. The postgres
// adapter in internal/infrastructure/database satisfies it in production;
// tests provide in-memory implementations.
type DB interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

package tasks

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// New returns a task store over a sqlite connection. Claiming uses a
// compare-and-swap update since sqlite has no SKIP LOCKED.
func New(db DBTX) *Queries {
	return &Queries{db: db, dialect: dialectSQLite}
}

// NewPostgres returns a task store over a postgres connection. Claiming
// uses FOR UPDATE SKIP LOCKED.
func NewPostgres(db DBTX) *Queries {
	return &Queries{db: db, dialect: dialectPostgres}
}

type Queries struct {
	db      DBTX
	dialect dialect
}

// WithTx binds the store to an open transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

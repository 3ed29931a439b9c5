package stdsql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

// Tx wraps a database/sql transaction and carries the engine type of the Handle that began it.
type Tx struct {
	tx   *sql.Tx
	Type string
}

var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) DBType() string {
	return t.Type
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Result{result: result}, nil
}

func (t *Tx) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	return &Row{row: t.tx.QueryRowContext(ctx, query, args...)}
}

func (t *Tx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

// Rollback treats an already finished transaction as rolled back.
func (t *Tx) Rollback(_ context.Context) error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

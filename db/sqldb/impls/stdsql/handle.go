// Package stdsql adapts database/sql to the sqldb contract.
// The mysql and sqlite clients embed its Handle.
package stdsql

import (
	"context"
	"database/sql"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

type Handle struct {
	*sql.DB // [Embedded]
	Type    string
}

// Ensure stdsql.Handle implements sqldb.Handle interface
var _ sqldb.Handle = (*Handle)(nil)

func (h *Handle) DBType() string {
	return h.Type
}

func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	result, err := h.DB.ExecContext(ctx, query, args...)
	// NOTE: We can process a DBMS-specific error to produce a better abstracted error
	if err != nil {
		return nil, err
	}
	return &Result{result: result}, nil
}

func (h *Handle) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	rows, err := h.DB.QueryContext(ctx, query, args...)
	// NOTE: We can process a DBMS-specific error to produce a better abstracted error
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (h *Handle) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	row := h.DB.QueryRowContext(ctx, query, args...)
	return &Row{row: row}
}

func (h *Handle) Ping(ctx context.Context) error {
	return h.DB.PingContext(ctx)
}

func (h *Handle) BeginTx(ctx context.Context) (sqldb.Tx, error) {
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, Type: h.Type}, nil
}

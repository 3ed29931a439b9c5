// Package sqldbtest provides an in-memory sqldb.Handle for tests. It records
// every statement and answers from scripted responders.
package sqldbtest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

// Call is one recorded statement.
type Call struct {
	Exec  bool // false for QueryRows/QueryRow
	Query string
	Args  []any
}

// Table is a scripted row set.
type Table struct {
	Columns []string
	Data    [][]any
}

// Handle is a scripted sqldb.Handle. The zero value answers every query with
// an empty row set and every exec with one affected row.
type Handle struct {
	Type string // defaults to sqlite

	// OnQuery answers QueryRows/QueryRow
	OnQuery func(query string, args []any) (Table, error)
	// OnExec answers Exec with rows affected and last insert id
	OnExec func(query string, args []any) (affected, lastID int64, err error)

	mu    sync.Mutex
	calls []Call
}

var _ sqldb.Handle = (*Handle)(nil)

func (h *Handle) DBType() string {
	if h.Type == "" {
		return sqldb.TypeSQLite
	}
	return h.Type
}

// Calls returns a copy of the statements seen so far.
func (h *Handle) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// Queries returns the SQL text of every recorded statement.
func (h *Handle) Queries() []string {
	calls := h.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Query
	}
	return out
}

func (h *Handle) record(exec bool, query string, args []any) {
	h.mu.Lock()
	h.calls = append(h.calls, Call{Exec: exec, Query: query, Args: args})
	h.mu.Unlock()
}

func (h *Handle) Exec(ctx context.Context, query string, args ...any) (sqldb.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.record(true, query, args)
	if h.OnExec == nil {
		return &Result{Affected: 1}, nil
	}
	affected, lastID, err := h.OnExec(query, args)
	if err != nil {
		return nil, err
	}
	return &Result{Affected: affected, LastID: lastID}, nil
}

func (h *Handle) QueryRows(ctx context.Context, query string, args ...any) (sqldb.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.record(false, query, args)
	var tbl Table
	if h.OnQuery != nil {
		var err error
		if tbl, err = h.OnQuery(query, args); err != nil {
			return nil, err
		}
	}
	return &Rows{table: tbl, pos: -1}, nil
}

func (h *Handle) QueryRow(ctx context.Context, query string, args ...any) sqldb.Row {
	rows, err := h.QueryRows(ctx, query, args...)
	return &Row{rows: rows, err: err}
}

type Result struct {
	Affected int64
	LastID   int64
}

func (r *Result) RowsAffected() (int64, error) { return r.Affected, nil }
func (r *Result) LastInsertId() (int64, error) { return r.LastID, nil }

type Rows struct {
	table  Table
	pos    int
	closed bool
}

func (r *Rows) Next() bool {
	if r.closed || r.pos+1 >= len(r.table.Data) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.table.Data) {
		return fmt.Errorf("sqldbtest: scan without current row")
	}
	row := r.table.Data[r.pos]
	if len(dest) != len(row) {
		return fmt.Errorf("sqldbtest: expected %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("sqldbtest: column %d: %w", i, err)
		}
	}
	return nil
}

func (r *Rows) Columns() ([]string, error) { return r.table.Columns, nil }
func (r *Rows) Close() error                { r.closed = true; return nil }
func (r *Rows) Err() error                  { return nil }

type Row struct {
	rows sqldb.Rows
	err  error
}

func (r *Row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	defer r.rows.Close()
	if !r.rows.Next() {
		return sqldb.ErrNoRows
	}
	return r.rows.Scan(dest...)
}

func assign(dest, val any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	target := dv.Elem()
	if val == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	vv := reflect.ValueOf(val)
	switch {
	case vv.Type().AssignableTo(target.Type()):
		target.Set(vv)
	case vv.Type().ConvertibleTo(target.Type()):
		target.Set(vv.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", val, target.Type())
	}
	return nil
}

// Tx is a scripted sqldb.Tx. Statements are recorded on the embedded Handle.
type Tx struct {
	*Handle

	Committed  bool
	RolledBack bool
}

var _ sqldb.Tx = (*Tx)(nil)

func (t *Tx) Commit(context.Context) error {
	t.Committed = true
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if !t.Committed {
		t.RolledBack = true
	}
	return nil
}

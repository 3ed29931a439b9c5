package mapper

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

// Result is the outcome of one statement.
type Result struct {
	Kind sqldb.QueryType
	Rows []sqldb.RowMap // row-returning kinds and row-producing RAW statements

	RowsAffected int64 // exec runs only
	LastInsertID int64 // 0 when the engine does not report one

	Single bool // Rows collapsed to at most the first row
}

// Row returns the first row, or nil.
func (r *Result) Row() sqldb.RowMap {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

func (r *Result) collapse() {
	r.Single = true
	if len(r.Rows) > 1 {
		r.Rows = r.Rows[:1]
	}
}

// Executor runs SQL text with named replacements on a Handle.
type Executor struct {
	h sqldb.Handle
}

func NewExecutor(h sqldb.Handle) *Executor {
	return &Executor{h: h}
}

func (x *Executor) Handle() sqldb.Handle {
	return x.h
}

// leading keywords of RAW statements that produce a row set
var rawRowLeaders = map[string]bool{
	"select": true, "with": true, "values": true, "table": true,
	"show": true, "call": true, "explain": true, "describe": true, "desc": true, "pragma": true,
}

var regexReturning = regexp.MustCompile(`(?i)\breturning\b`)

// rawReturnsRows reports whether a RAW statement should be run with QueryRows.
func rawReturnsRows(sqlText string) bool {
	s := strings.TrimLeft(NormalizeSQL(sqlText), "(")
	word := s
	if end := strings.IndexAny(s, " ("); end >= 0 {
		word = s[:end]
	}
	if rawRowLeaders[strings.ToLower(word)] {
		return true
	}
	return regexReturning.MatchString(s)
}

// Execute validates kind, binds params and dispatches on whether kind
// returns rows. A RAW statement returns rows when it reads like a query
// (select, with, call, show, ... or a RETURNING clause) and runs as an exec otherwise.
func (x *Executor) Execute(ctx context.Context, sqlText string, kind sqldb.QueryType, params map[string]any) (*Result, error) {
	kind, err := sqldb.ParseQueryType(string(kind))
	if err != nil {
		return nil, err
	}
	res := &Result{Kind: kind}
	if kind.ReturnsRows() || (kind == sqldb.QueryRaw && rawReturnsRows(sqlText)) {
		rows, err := x.query(ctx, sqlText, params)
		if err != nil {
			return nil, err
		}
		if res.Rows, err = sqldb.RowsToMaps(rows); err != nil {
			return nil, err
		}
		return res, nil
	}

	query, args, err := x.prepare(sqlText, params)
	if err != nil {
		return nil, err
	}
	r, err := x.h.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	if res.RowsAffected, err = r.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if id, err := r.LastInsertId(); err == nil {
		res.LastInsertID = id
	}
	return res, nil
}

// query runs a row-returning statement and hands back the open rows.
func (x *Executor) query(ctx context.Context, sqlText string, params map[string]any) (sqldb.Rows, error) {
	query, args, err := x.prepare(sqlText, params)
	if err != nil {
		return nil, err
	}
	rows, err := x.h.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

func (x *Executor) prepare(sqlText string, params map[string]any) (string, []any, error) {
	normalized := NormalizeSQLFor(x.h.DBType(), sqlText)
	log.Printf("[INFO][MAPPER] exec %s", normalized)
	prefix := sqldb.PlaceholderPrefixForDBType[x.h.DBType()]
	return sqldb.BindNamed(normalized, params, prefix)
}

// NormalizeSQL collapses whitespace runs to one space, removes whitespace
// before `(` and `)` and after `(`, drops `--` line comments and trims the
// result. Quoted literals are copied untouched.
func NormalizeSQL(s string) string {
	return NormalizeSQLFor("", s)
}

// NormalizeSQLFor is NormalizeSQL under dbType's comment rules. mysql only
// starts a comment at `--` followed by whitespace or the end of the text.
func NormalizeSQLFor(dbType, s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false   // whitespace seen since last written byte
	afterOpen := false // last written byte is '('
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			if pending && b.Len() > 0 && !afterOpen {
				b.WriteByte(' ')
			}
			pending, afterOpen = false, false
			j := i + 1
			for j < len(s) && s[j] != c {
				j++
			}
			if j < len(s) {
				j++
			}
			b.WriteString(s[i:j])
			i = j - 1
		case c == '-' && i+1 < len(s) && s[i+1] == '-' && (dbType != sqldb.TypeMySQL || i+2 == len(s) || isSpace(s[i+2])):
			for i < len(s) && s[i] != '\n' {
				i++
			}
			pending = true
		case isSpace(c):
			pending = true
		case c == '(' || c == ')':
			b.WriteByte(c)
			pending = false
			afterOpen = c == '('
		default:
			if pending && b.Len() > 0 && !afterOpen {
				b.WriteByte(' ')
			}
			b.WriteByte(c)
			pending, afterOpen = false, false
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

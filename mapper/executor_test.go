package mapper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/db/sqldb/sqldbtest"
)

func TestNormalizeSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse", "select  id,\n\tname\nfrom users  ", "select id, name from users"},
		{"parens", "insert into t ( a, b ) values ( :a , :b )", "insert into t(a, b) values(:a , :b)"},
		{"quoted", "select 'a  b' , \"c\n d\" from t", "select 'a  b' , \"c\n d\" from t"},
		{"line comment", "select id -- the key\nfrom t", "select id from t"},
		{"leading", "\n  select 1", "select 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSQL(tt.in))
		})
	}
}

func TestExecuteSelect(t *testing.T) {
	h := &sqldbtest.Handle{
		OnQuery: func(query string, args []any) (sqldbtest.Table, error) {
			return sqldbtest.Table{
				Columns: []string{"id", "name"},
				Data:    [][]any{{int64(1), []byte("ann")}, {int64(2), "bob"}},
			}, nil
		},
	}
	res, err := NewExecutor(h).Execute(context.Background(),
		"select id, name\n from users where age > :age", sqldb.QuerySelect, map[string]any{"age": 30})
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, sqldb.RowMap{"id": int64(1), "name": "ann"}, res.Rows[0])
	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Exec)
	assert.Equal(t, "select id, name from users where age > ?", calls[0].Query)
	assert.Equal(t, []any{30}, calls[0].Args)
}

func TestExecuteRawUsesExec(t *testing.T) {
	h := &sqldbtest.Handle{
		Type: sqldb.TypePgSQL,
		OnExec: func(query string, args []any) (int64, int64, error) {
			return 3, 0, nil
		},
	}
	res, err := NewExecutor(h).Execute(context.Background(),
		"update users set seen = 1 where id in (:ids)", "raw", map[string]any{"ids": []int{1, 2, 3}})
	require.NoError(t, err)

	assert.Equal(t, sqldb.QueryRaw, res.Kind)
	assert.Equal(t, int64(3), res.RowsAffected)
	assert.Nil(t, res.Rows)
	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Exec)
	assert.Equal(t, "update users set seen = 1 where id in($1, $2, $3)", calls[0].Query)
	assert.Equal(t, []any{1, 2, 3}, calls[0].Args)
}

func TestExecuteRawQueryReturnsRows(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"select", "select id from users where id = :id"},
		{"cte", "with x as (select 1 as id) select id from x"},
		{"call", "CALL user_stats(:id)"},
		{"returning", "insert into users(name) values(:name) returning id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &sqldbtest.Handle{
				OnQuery: func(string, []any) (sqldbtest.Table, error) {
					return sqldbtest.Table{Columns: []string{"id"}, Data: [][]any{{int64(4)}}}, nil
				},
			}
			res, err := NewExecutor(h).Execute(context.Background(), tt.sql, sqldb.QueryRaw,
				map[string]any{"id": 4, "name": "ann"})
			require.NoError(t, err)

			assert.Equal(t, sqldb.QueryRaw, res.Kind)
			assert.Equal(t, []sqldb.RowMap{{"id": int64(4)}}, res.Rows)
			require.Len(t, h.Calls(), 1)
			assert.False(t, h.Calls()[0].Exec)
		})
	}
}

func TestNormalizeSQLMySQLComments(t *testing.T) {
	assert.Equal(t, "select a--1 from t", NormalizeSQLFor(sqldb.TypeMySQL, "select a--1 from t"))
	assert.Equal(t, "select a from t", NormalizeSQLFor(sqldb.TypeMySQL, "select a -- note\nfrom t"))
	assert.Equal(t, "select a", NormalizeSQLFor(sqldb.TypeMySQL, "select a --"))
	assert.Equal(t, "select a", NormalizeSQLFor(sqldb.TypePgSQL, "select a--1 from t"))

	h := &sqldbtest.Handle{Type: sqldb.TypeMySQL}
	_, err := NewExecutor(h).Execute(context.Background(), "update t set a = a--1", sqldb.QueryUpdate, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"update t set a = a--1"}, h.Queries())
}

func TestExecuteRejectsUnknownKind(t *testing.T) {
	h := &sqldbtest.Handle{}
	_, err := NewExecutor(h).Execute(context.Background(), "select 1", "MERGE", nil)
	assert.ErrorIs(t, err, ErrUnsupportedQueryType)
	assert.Contains(t, err.Error(), "MERGE")
	assert.Empty(t, h.Calls())
}

func TestExecuteUnboundParam(t *testing.T) {
	h := &sqldbtest.Handle{}
	_, err := NewExecutor(h).Execute(context.Background(), "select * from t where id = :id", sqldb.QuerySelect, nil)
	assert.ErrorIs(t, err, sqldb.ErrUnboundParam)
	assert.Empty(t, h.Calls())
}

func TestExecuteEngineErrorIsWrapped(t *testing.T) {
	boom := errors.New("engine down")
	h := &sqldbtest.Handle{
		OnQuery: func(string, []any) (sqldbtest.Table, error) { return sqldbtest.Table{}, boom },
	}
	_, err := NewExecutor(h).Execute(context.Background(), "select 1", sqldb.QuerySelect, nil)
	assert.ErrorIs(t, err, boom)
}

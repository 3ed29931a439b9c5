package sqldb_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/db/sqldb/sqldbtest"
)

func TestBindNamed(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		params   map[string]any
		prefix   byte
		want     string
		wantArgs []any
	}{
		{
			name:     "question marks",
			query:    "select * from t where a = :a and b = :b",
			params:   map[string]any{"a": 1, "b": "x"},
			prefix:   '?',
			want:     "select * from t where a = ? and b = ?",
			wantArgs: []any{1, "x"},
		},
		{
			name:     "numbered",
			query:    "select * from t where a = :a or a = :a",
			params:   map[string]any{"a": 1},
			prefix:   '$',
			want:     "select * from t where a = $1 or a = $2",
			wantArgs: []any{1, 1},
		},
		{
			name:     "list expands",
			query:    "delete from t where id in (:ids)",
			params:   map[string]any{"ids": []int64{4, 5}},
			prefix:   '$',
			want:     "delete from t where id in ($1, $2)",
			wantArgs: []any{int64(4), int64(5)},
		},
		{
			name:     "empty list",
			query:    "select * from t where id in (:ids)",
			params:   map[string]any{"ids": []int{}},
			prefix:   '?',
			want:     "select * from t where id in (NULL)",
			wantArgs: []any{},
		},
		{
			name:     "casts and literals untouched",
			query:    "select a::text, ':nope' from t where b = :b",
			params:   map[string]any{"b": []byte("raw")},
			prefix:   0,
			want:     "select a::text, ':nope' from t where b = ?",
			wantArgs: []any{[]byte("raw")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args, err := sqldb.BindNamed(tt.query, tt.params, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBindNamedUnbound(t *testing.T) {
	_, _, err := sqldb.BindNamed("select :missing", nil, '?')
	assert.ErrorIs(t, err, sqldb.ErrUnboundParam)
	assert.Contains(t, err.Error(), "missing")
}

func TestNamedParams(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, sqldb.NamedParams("select :a, :b, :a, x::int, ':c'"))
}

func TestParseQueryType(t *testing.T) {
	qt, err := sqldb.ParseQueryType(" select ")
	require.NoError(t, err)
	assert.Equal(t, sqldb.QuerySelect, qt)
	assert.True(t, qt.ReturnsRows())
	assert.False(t, sqldb.QueryRaw.ReturnsRows())
	assert.True(t, sqldb.QueryShowTables.ReturnsRows())

	_, err = sqldb.ParseQueryType("MERGE")
	assert.ErrorIs(t, err, sqldb.ErrUnsupportedQueryType)
}

func TestLimitClause(t *testing.T) {
	assert.Equal(t, "limit 20,10", sqldb.LimitClause(sqldb.TypeMySQL, 20, 10))
	assert.Equal(t, "limit 20,10", sqldb.LimitClause(sqldb.TypeSQLite, 20, 10))
	assert.Equal(t, "limit 10 offset 20", sqldb.LimitClause(sqldb.TypePgSQL, 20, 10))
}

func TestQuoteIdentifierAndOrderBy(t *testing.T) {
	col := sqldb.NewColumnOrPanic("u.created_at")
	assert.Equal(t, "`u`.`created_at`", sqldb.QuoteIdentifier(sqldb.TypeMySQL, col))
	assert.Equal(t, `"u"."created_at"`, sqldb.QuoteIdentifier(sqldb.TypePgSQL, col))

	assert.Equal(t, "", sqldb.OrderByClause(sqldb.TypeMySQL, nil))
	assert.Equal(t, " ORDER BY `name` ASC, `id` DESC",
		sqldb.OrderByClause(sqldb.TypeMySQL, []sqldb.OrderBy{sqldb.Asc("name"), sqldb.Desc("id")}))
}

func TestNewColumnRejectsInjection(t *testing.T) {
	for _, name := range []string{"", "1abc", "a b", "a;drop", "a.", `a"b`} {
		_, err := sqldb.NewColumn(name)
		assert.ErrorIs(t, err, sqldb.ErrInvalidIdentifier, name)
	}
	assert.Panics(t, func() { sqldb.NewColumnOrPanic("x y") })
}

func TestRowsToMaps(t *testing.T) {
	h := &sqldbtest.Handle{
		OnQuery: func(string, []any) (sqldbtest.Table, error) {
			return sqldbtest.Table{
				Columns: []string{"id", "name", "note"},
				Data:    [][]any{{int64(1), []byte("ann"), nil}, {int64(2), "bob", "x"}},
			}, nil
		},
	}
	rows, err := h.QueryRows(context.Background(), "select id, name, note from t")
	require.NoError(t, err)

	got, err := sqldb.RowsToMaps(rows)
	require.NoError(t, err)
	assert.Equal(t, []sqldb.RowMap{
		{"id": int64(1), "name": "ann", "note": nil},
		{"id": int64(2), "name": "bob", "note": "x"},
	}, got)
}

type item struct {
	ID   int64
	Name string
}

func (i *item) TargetFields() []any { return []any{&i.ID, &i.Name} }

func TestRowsToItems(t *testing.T) {
	h := &sqldbtest.Handle{
		OnQuery: func(string, []any) (sqldbtest.Table, error) {
			return sqldbtest.Table{Columns: []string{"id", "name"}, Data: [][]any{{int64(3), "c"}}}, nil
		},
	}
	rows, err := h.QueryRows(context.Background(), "select id, name from t")
	require.NoError(t, err)

	items, err := sqldb.RowsToItems[item, *item](rows)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item{ID: 3, Name: "c"}, *items[0])
}

func TestFactoryUnknownType(t *testing.T) {
	_, err := sqldb.New("oracle", &sqldb.Conf{})
	assert.Error(t, err)
}

type txClient struct {
	*sqldbtest.Handle
	tx *sqldbtest.Tx
}

func (c *txClient) Init() error                { return nil }
func (c *txClient) Close() error               { return nil }
func (c *txClient) GetHandle() sqldb.Handle    { return c.Handle }
func (c *txClient) GetConf() *sqldb.Conf       { return nil }
func (c *txClient) GetDSN() string             { return "" }
func (c *txClient) Ping(context.Context) error { return nil }
func (c *txClient) BeginTx(context.Context) (sqldb.Tx, error) {
	c.tx = &sqldbtest.Tx{Handle: c.Handle}
	return c.tx, nil
}

func TestInTx(t *testing.T) {
	ctx := context.Background()

	c := &txClient{Handle: &sqldbtest.Handle{}}
	err := sqldb.InTx(ctx, c, func(tx sqldb.Tx) error {
		_, err := tx.Exec(ctx, "delete from t")
		return err
	})
	require.NoError(t, err)
	assert.True(t, c.tx.Committed)
	assert.False(t, c.tx.RolledBack)
	assert.Equal(t, []string{"delete from t"}, c.Handle.Queries())

	boom := errors.New("boom")
	c = &txClient{Handle: &sqldbtest.Handle{}}
	err = sqldb.InTx(ctx, c, func(sqldb.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.tx.Committed)
	assert.True(t, c.tx.RolledBack)
}

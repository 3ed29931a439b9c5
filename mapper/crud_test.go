package mapper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/db/sqldb/sqldbtest"
	"github.com/zeptools/gw-mapper/entity"
)

func newCrudDAO(t *testing.T, h sqldb.Handle) *DAO {
	t.Helper()
	d, err := New(h, newUserEntity(), "")
	require.NoError(t, err)
	return d
}

func TestSave(t *testing.T) {
	h := &sqldbtest.Handle{OnExec: func(string, []any) (int64, int64, error) { return 1, 7, nil }}
	d := newCrudDAO(t, h)

	saved, err := d.Save(context.Background(), entity.V("name", "ann", "email", nil))
	require.NoError(t, err)

	assert.Equal(t, entity.V("name", "ann", "id", int64(7)), saved)
	calls := h.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, `INSERT INTO "users"("name") VALUES(?)`, calls[0].Query)
	assert.Equal(t, []any{"ann"}, calls[0].Args)
}

func TestSaveOnlyListedFields(t *testing.T) {
	h := &sqldbtest.Handle{}
	d := newCrudDAO(t, h)

	_, err := d.Save(context.Background(), entity.V("name", "ann", "email", "a@x.io"), "email")
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users"("email") VALUES(?)`, h.Queries()[0])
}

func TestSaveGeneratedKey(t *testing.T) {
	h := &sqldbtest.Handle{Type: sqldb.TypeMySQL}
	e := &entity.Entity{
		Name: "Session",
		Fields: []entity.Field{
			{Name: "id", Type: "string", PrimaryKey: true, Generator: "uuid"},
			{Name: "userId", Type: "bigint"},
		},
	}
	d, err := New(h, e, "")
	require.NoError(t, err)

	saved, err := d.Save(context.Background(), entity.V("userId", 3))
	require.NoError(t, err)
	id, ok := saved.Get("id")
	require.True(t, ok)
	assert.Len(t, id, 36)
	assert.Equal(t, "INSERT INTO `sessions`(`user_id`, `id`) VALUES(?, ?)", h.Queries()[0])
}

func TestSaveUnknownField(t *testing.T) {
	d := newCrudDAO(t, &sqldbtest.Handle{})
	_, err := d.Save(context.Background(), entity.V("nickname", "x"))
	assert.ErrorIs(t, err, entity.ErrUnknownField)
}

func TestFindByID(t *testing.T) {
	h := &sqldbtest.Handle{
		OnQuery: func(query string, args []any) (sqldbtest.Table, error) {
			if args[0] == 404 {
				return sqldbtest.Table{}, nil
			}
			return sqldbtest.Table{Columns: []string{"id", "name", "email"}, Data: [][]any{{int64(5), "ann", nil}}}, nil
		},
	}
	d := newCrudDAO(t, h)

	row, err := d.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, sqldb.RowMap{"id": int64(5), "name": "ann", "email": nil}, row)
	assert.Equal(t,
		`SELECT "id" AS "id","name" AS "name","email" AS "email" FROM "users" WHERE "id" = ? limit 0,1`,
		h.Queries()[0])

	_, err = d.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, sqldb.ErrNoRows)
}

func TestFindAll(t *testing.T) {
	h := &sqldbtest.Handle{Type: sqldb.TypePgSQL}
	d := newCrudDAO(t, h)

	_, err := d.FindAll(context.Background(),
		entity.V("name", []string{"ann", "bob"}, "email", nil),
		sqldb.Desc("id"))
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id" AS "id","name" AS "name","email" AS "email" FROM "users" WHERE "name" IN($1, $2) AND "email" IS NULL ORDER BY "id" DESC`,
		h.Queries()[0])
	assert.Equal(t, []any{"ann", "bob"}, h.Calls()[0].Args)
}

func TestUpdate(t *testing.T) {
	h := &sqldbtest.Handle{OnExec: func(string, []any) (int64, int64, error) { return 2, 0, nil }}
	d := newCrudDAO(t, h)

	n, err := d.Update(context.Background(), entity.V("name", "zed", "email", nil), entity.V("id", []int{1, 2}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, `UPDATE "users" SET "name" = ?, "email" = ? WHERE "id" IN(?, ?)`, h.Queries()[0])
	assert.Equal(t, []any{"zed", nil, 1, 2}, h.Calls()[0].Args)
}

func TestRemove(t *testing.T) {
	h := &sqldbtest.Handle{}
	d := newCrudDAO(t, h)

	n, err := d.Remove(context.Background(), entity.V("id", 3))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" = ?`, h.Queries()[0])
}

func TestWritesRequireWhere(t *testing.T) {
	h := &sqldbtest.Handle{}
	d := newCrudDAO(t, h)

	_, err := d.Update(context.Background(), entity.V("name", "x"), nil)
	assert.ErrorIs(t, err, ErrUnsafeWrite)
	_, err = d.Remove(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsafeWrite)
	assert.Empty(t, h.Calls())
}

func TestCrudWithoutEntity(t *testing.T) {
	d, err := New(&sqldbtest.Handle{}, nil, "")
	require.NoError(t, err)
	_, err = d.FindAll(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoEntity)
}

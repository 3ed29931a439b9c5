package entity

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/gw-mapper/db/sqldb/sqldbtest"
)

func TestCreateTableSQL(t *testing.T) {
	notNull := false
	e := &Entity{Name: "User", Fields: []Field{
		{Name: "id", Type: "bigint", PrimaryKey: true, AutoIncrement: true},
		{Name: "email", Type: "string", Unique: true, AllowNull: &notNull},
		{Name: "createdAt", Type: "datetime", Default: "CURRENT_TIMESTAMP"},
	}}
	require.NoError(t, e.Init())

	tests := []struct {
		dbType string
		want   string
	}{
		{"mysql", "CREATE TABLE IF NOT EXISTS `users` (`id` BIGINT NOT NULL AUTO_INCREMENT, `email` VARCHAR(255) NOT NULL UNIQUE, `created_at` DATETIME DEFAULT CURRENT_TIMESTAMP, PRIMARY KEY (`id`))"},
		{"pgsql", `CREATE TABLE IF NOT EXISTS "users" ("id" BIGSERIAL NOT NULL, "email" VARCHAR(255) NOT NULL UNIQUE, "created_at" TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP, PRIMARY KEY ("id"))`},
		{"sqlite", `CREATE TABLE IF NOT EXISTS "users" ("id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, "email" TEXT NOT NULL UNIQUE, "created_at" TEXT DEFAULT CURRENT_TIMESTAMP)`},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			got, err := CreateTableSQL(tt.dbType, e)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateTableSQLUnknownType(t *testing.T) {
	e := &Entity{Name: "X", Fields: []Field{{Name: "id", Type: "geometry"}}}
	require.NoError(t, e.Init())
	_, err := CreateTableSQL("mysql", e)
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

const userDef = `
name: User
fields:
  - name: id
    type: bigint
    primaryKey: true
    autoIncrement: true
  - name: userName
    type: string
`

const postDef = `{"name": "Post", "table": "blog_posts", "fields": [{"name": "id", "type": "uuid", "primaryKey": true, "generator": "uuid"}]}`

func TestDiscover(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/models/user.entity.yaml", []byte(userDef), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/app/models/blog/post.entity.json", []byte(postDef), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/app/models/broken.entity.yml", []byte("name: [unclosed"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/app/models/readme.md", []byte("# models"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/app/node_modules/dep/x.entity.yaml", []byte(userDef), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/app/.cache/y.entity.yaml", []byte(userDef), 0o644))

	found, err := Discover(fs, "/app", nil)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Post", found[0].Name)
	assert.Equal(t, "blog_posts", found[0].Table)
	assert.Equal(t, "User", found[1].Name)
	assert.Equal(t, "users", found[1].Table)

	_, err = Discover(fs, "/missing", nil)
	assert.Error(t, err)
}

func TestLoadEntitiesSyncsEachTable(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/m/user.entity.yaml", []byte(userDef), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/m/post.entity.json", []byte(postDef), 0o644))

	h := &sqldbtest.Handle{}
	reg := NewRegistry()
	loaded, err := LoadEntities(context.Background(), fs, "/m", nil, reg, h)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, []string{"Post", "User"}, reg.Names())

	queries := h.Queries()
	require.Len(t, queries, 2)
	for _, q := range queries {
		assert.Contains(t, q, "CREATE TABLE IF NOT EXISTS")
	}
}

package tpl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeptools/gw-mapper/entity"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name string
		seq  any
		opts []string
		want string
	}{
		{name: "defaults", seq: []string{"a", "b", "c"}, want: ":_arr_0,:_arr_1,:_arr_2"},
		{name: "separator", seq: []int{1, 2}, opts: []string{" , "}, want: ":_arr_0 , :_arr_1"},
		{name: "base name", seq: [2]int{7, 8}, opts: []string{",", "ids"}, want: ":_ids_0,:_ids_1"},
		{name: "empty", seq: []int{}, want: ""},
		{name: "nil", seq: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Join(tt.seq, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinRejectsScalars(t *testing.T) {
	_, err := Join(42)
	assert.Error(t, err)
}

func TestArrayToObj(t *testing.T) {
	got, err := ArrayToObj([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"_arr_0": "a", "_arr_1": "b", "_arr_2": "c"}, got)
}

func TestJoinPlaceholdersMatchArrayToObjKeys(t *testing.T) {
	seqs := []any{
		[]int{},
		[]int{1},
		[]string{"x", "y", "z", "w"},
		[]any{1, "two", 3.0},
	}
	for _, seq := range seqs {
		for _, base := range []string{"arr", "ids"} {
			joined, err := Join(seq, ",", base)
			require.NoError(t, err)
			obj, err := ArrayToObj(seq, base)
			require.NoError(t, err)

			var placeholders []string
			if joined != "" {
				for _, p := range strings.Split(joined, ",") {
					placeholders = append(placeholders, strings.TrimPrefix(p, ":"))
				}
			}
			keys := make([]string, 0, len(obj))
			for k := range obj {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, placeholders, keys)
		}
	}
}

func TestMergeParams(t *testing.T) {
	a := map[string]any{"x": 1, "y": 2}
	b := map[string]any{"y": 3}
	got := MergeParams(a, b)
	assert.Equal(t, map[string]any{"x": 1, "y": 3}, got)
	assert.Equal(t, 2, a["y"], "inputs are not modified")
}

func TestCompileFailsOnMalformedTemplate(t *testing.T) {
	_, err := Compile("broken", "select * from t where {{if .x}}", nil)
	assert.Error(t, err)

	_, err = Compile("unknown func", "select {{nope .x}}", nil)
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	r, err := Compile("byIds", `select * from users where id in ({{join .ids "," "id"}}){{if index . "name"}} and name = :name{{end}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, "byIds", r.Name())

	sql, err := r.Render(map[string]any{"ids": []int{4, 5}})
	require.NoError(t, err)
	assert.Equal(t, "select * from users where id in (:_id_0,:_id_1)", sql)

	sql, err = r.Render(map[string]any{"ids": []int{4}, "name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, "select * from users where id in (:_id_0) and name = :name", sql)

	again, err := r.Render(map[string]any{"ids": []int{4}, "name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, sql, again, "rendering is deterministic")
}

func TestRenderFailsOnMissingVariable(t *testing.T) {
	r := MustCompile("t", "select * from t where a = {{.a}}", nil)
	_, err := r.Render(nil)
	assert.Error(t, err)
}

func TestFieldsHelper(t *testing.T) {
	reg := entity.NewRegistry().MustRegister(&entity.Entity{
		Name: "User",
		Fields: []entity.Field{
			{Name: "id", PrimaryKey: true, Type: "bigint"},
			{Name: "userName", Type: "string"},
			{Name: "email", Column: "email_address"},
		},
	})
	r, err := Compile("all", `select {{fields "User"}} from users`, &Helpers{Entities: reg, DBType: "sqlite"})
	require.NoError(t, err)

	sql, err := r.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, `select "id" AS "id","user_name" AS "userName","email_address" AS "email" from users`, sql)

	r = MustCompile("missing", `select {{fields "Nope"}} from x`, &Helpers{Entities: reg})
	_, err = r.Render(nil)
	assert.Error(t, err)
}

package mapper

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/zeptools/gw-mapper/db/sqldb"
	"github.com/zeptools/gw-mapper/entity"
)

func (d *DAO) requireEntity() (*entity.Entity, error) {
	if d.entity == nil {
		return nil, ErrNoEntity
	}
	return d.entity, nil
}

func (d *DAO) quote(c sqldb.Column) string {
	return sqldb.QuoteIdentifier(d.exec.h.DBType(), c)
}

// whereClause renders vs as ` WHERE a = :w0 AND b IN (:w1) ...` into params.
// A nil value matches NULL; a slice value matches any of its elements.
func (d *DAO) whereClause(e *entity.Entity, vs entity.Values, params map[string]any) (string, error) {
	if len(vs) == 0 {
		return "", nil
	}
	var b strings.Builder
	b.WriteString(" WHERE ")
	for i, v := range vs {
		col, err := e.ColumnOf(v.Name)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(d.quote(col))
		key := "w" + strconv.Itoa(i)
		switch {
		case v.Value == nil:
			b.WriteString(" IS NULL")
			continue
		case isList(v.Value):
			b.WriteString(" IN (:" + key + ")")
		default:
			b.WriteString(" = :" + key)
		}
		params[key] = v.Value
	}
	return b.String(), nil
}

func isList(v any) bool {
	if _, ok := v.([]byte); ok {
		return false
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func (d *DAO) selectFrom(e *entity.Entity) string {
	return "SELECT " + e.Projection(d.exec.h.DBType()) + " FROM " + d.quote(e.TableColumn())
}

// Save inserts values, nil values left out. When fields are given only those
// are written. Empty generated primary keys are filled in first, and an
// auto-increment key is taken from the engine. The stored values are returned.
func (d *DAO) Save(ctx context.Context, values entity.Values, fields ...string) (entity.Values, error) {
	e, err := d.requireEntity()
	if err != nil {
		return nil, err
	}
	vs := values.WithoutNil().Pick(fields...)
	if vs, err = e.FillGenerated(vs); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, fmt.Errorf("save %s: no values", e.Name)
	}
	cols := make([]string, len(vs))
	marks := make([]string, len(vs))
	params := make(map[string]any, len(vs))
	for i, v := range vs {
		col, err := e.ColumnOf(v.Name)
		if err != nil {
			return nil, err
		}
		key := "v" + strconv.Itoa(i)
		cols[i] = d.quote(col)
		marks[i] = ":" + key
		params[key] = v.Value
	}
	sqlText := "INSERT INTO " + d.quote(e.TableColumn()) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	res, err := d.exec.Execute(ctx, sqlText, sqldb.QueryInsert, params)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", e.Name, err)
	}
	if pk, ok := e.PrimaryKey(); ok && pk.AutoIncrement && res.LastInsertID != 0 {
		if _, set := vs.Get(pk.Name); !set {
			vs = vs.Set(pk.Name, res.LastInsertID)
		}
	}
	return vs, nil
}

// FindByID returns the row whose primary key equals id, or sqldb.ErrNoRows.
func (d *DAO) FindByID(ctx context.Context, id any) (sqldb.RowMap, error) {
	e, err := d.requireEntity()
	if err != nil {
		return nil, err
	}
	pk, ok := e.PrimaryKey()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no primary key", entity.ErrInvalidEntity, e.Name)
	}
	return d.FindOne(ctx, entity.Values{{Name: pk.Name, Value: id}})
}

// FindOne returns the first row matching where, or sqldb.ErrNoRows.
func (d *DAO) FindOne(ctx context.Context, where entity.Values) (sqldb.RowMap, error) {
	e, err := d.requireEntity()
	if err != nil {
		return nil, err
	}
	params := map[string]any{}
	w, err := d.whereClause(e, where, params)
	if err != nil {
		return nil, err
	}
	sqlText := d.selectFrom(e) + w + "\n" + sqldb.LimitClause(d.exec.h.DBType(), 0, 1)
	res, err := d.exec.Execute(ctx, sqlText, sqldb.QuerySelect, params)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", e.Name, err)
	}
	row := res.Row()
	if row == nil {
		return nil, sqldb.ErrNoRows
	}
	return row, nil
}

// FindAll returns every row matching where. order names fields, not columns.
func (d *DAO) FindAll(ctx context.Context, where entity.Values, order ...sqldb.OrderBy) ([]sqldb.RowMap, error) {
	e, err := d.requireEntity()
	if err != nil {
		return nil, err
	}
	params := map[string]any{}
	w, err := d.whereClause(e, where, params)
	if err != nil {
		return nil, err
	}
	cols := make([]sqldb.OrderBy, len(order))
	for i, o := range order {
		col, err := e.ColumnOf(o.Column.Name())
		if err != nil {
			return nil, err
		}
		cols[i] = sqldb.OrderBy{Column: col, Desc: o.Desc}
	}
	sqlText := d.selectFrom(e) + w + sqldb.OrderByClause(d.exec.h.DBType(), cols)
	res, err := d.exec.Execute(ctx, sqlText, sqldb.QuerySelect, params)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", e.Name, err)
	}
	return res.Rows, nil
}

// Update sets values on the rows matching where and returns the number of
// affected rows. A nil value sets NULL. When fields are given only those are
// written.
func (d *DAO) Update(ctx context.Context, values, where entity.Values, fields ...string) (int64, error) {
	e, err := d.requireEntity()
	if err != nil {
		return 0, err
	}
	if len(where) == 0 {
		return 0, ErrUnsafeWrite
	}
	vs := values.Pick(fields...)
	if len(vs) == 0 {
		return 0, fmt.Errorf("update %s: no values", e.Name)
	}
	params := make(map[string]any, len(vs)+len(where))
	sets := make([]string, len(vs))
	for i, v := range vs {
		col, err := e.ColumnOf(v.Name)
		if err != nil {
			return 0, err
		}
		key := "v" + strconv.Itoa(i)
		sets[i] = d.quote(col) + " = :" + key
		params[key] = v.Value
	}
	w, err := d.whereClause(e, where, params)
	if err != nil {
		return 0, err
	}
	sqlText := "UPDATE " + d.quote(e.TableColumn()) + " SET " + strings.Join(sets, ", ") + w
	res, err := d.exec.Execute(ctx, sqlText, sqldb.QueryUpdate, params)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", e.Name, err)
	}
	return res.RowsAffected, nil
}

// Remove deletes the rows matching where and returns how many were deleted.
func (d *DAO) Remove(ctx context.Context, where entity.Values) (int64, error) {
	e, err := d.requireEntity()
	if err != nil {
		return 0, err
	}
	if len(where) == 0 {
		return 0, ErrUnsafeWrite
	}
	params := map[string]any{}
	w, err := d.whereClause(e, where, params)
	if err != nil {
		return 0, err
	}
	res, err := d.exec.Execute(ctx, "DELETE FROM "+d.quote(e.TableColumn())+w, sqldb.QueryDelete, params)
	if err != nil {
		return 0, fmt.Errorf("remove %s: %w", e.Name, err)
	}
	return res.RowsAffected, nil
}

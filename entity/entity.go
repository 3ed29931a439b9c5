// Package entity holds explicit, ordered entity definitions: the field list a
// DAO writes and reads, the projection templates reach through `fields`, and
// the table shape synchronized into the database.
package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

var (
	ErrInvalidEntity = errors.New("entity: invalid definition")
	ErrUnknownField  = errors.New("entity: unknown field")
)

// Field is one attribute of an entity. Name is the logical (attribute) name,
// Column the database column it is stored in.
type Field struct {
	Name          string `yaml:"name" json:"name"`
	Column        string `yaml:"column" json:"column"`
	Type          string `yaml:"type" json:"type"`
	PrimaryKey    bool   `yaml:"primaryKey" json:"primaryKey"`
	AutoIncrement bool   `yaml:"autoIncrement" json:"autoIncrement"`
	AllowNull     *bool  `yaml:"allowNull" json:"allowNull"` // nil = nullable unless primary key
	Unique        bool   `yaml:"unique" json:"unique"`
	Default       string `yaml:"default" json:"default"` // raw SQL default expression
	Generator     string `yaml:"generator" json:"generator"` // uuid, ulid

	column sqldb.Column
}

// Nullable reports whether the column accepts NULL.
func (f *Field) Nullable() bool {
	if f.AllowNull != nil {
		return *f.AllowNull
	}
	return !f.PrimaryKey
}

// Entity is a named table with its fields in declaration order.
type Entity struct {
	Name   string  `yaml:"name" json:"name"`
	Table  string  `yaml:"table" json:"table"`
	Fields []Field `yaml:"fields" json:"fields"`

	table  sqldb.Column
	byName map[string]int
}

// Init fills defaults (table and column names) and validates identifiers.
// It must be called before the entity is used; Registry.Register does it.
func (e *Entity) Init() error {
	if e.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidEntity)
	}
	if len(e.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrInvalidEntity, e.Name)
	}
	if e.Table == "" {
		e.Table = TableName(e.Name)
	}
	var err error
	if e.table, err = sqldb.NewColumn(e.Table); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEntity, e.Name, err)
	}
	e.byName = make(map[string]int, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("%w: %s field #%d has no name", ErrInvalidEntity, e.Name, i)
		}
		if _, err = sqldb.NewColumn(f.Name); err != nil {
			return fmt.Errorf("%w: %s field name: %v", ErrInvalidEntity, e.Name, err)
		}
		if _, dup := e.byName[f.Name]; dup {
			return fmt.Errorf("%w: %s declares field %s twice", ErrInvalidEntity, e.Name, f.Name)
		}
		if f.Column == "" {
			f.Column = SnakeCase(f.Name)
		}
		if f.column, err = sqldb.NewColumn(f.Column); err != nil {
			return fmt.Errorf("%w: %s.%s: %v", ErrInvalidEntity, e.Name, f.Name, err)
		}
		if f.Generator != "" {
			if _, err = GeneratorFor(f.Generator); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidEntity, e.Name, f.Name, err)
			}
		}
		e.byName[f.Name] = i
	}
	return nil
}

// TableColumn is the validated table identifier.
func (e *Entity) TableColumn() sqldb.Column {
	return e.table
}

// Field looks a field up by logical name.
func (e *Entity) Field(name string) (*Field, bool) {
	i, ok := e.byName[name]
	if !ok {
		return nil, false
	}
	return &e.Fields[i], true
}

// ColumnOf resolves a logical field name to its validated column.
func (e *Entity) ColumnOf(name string) (sqldb.Column, error) {
	f, ok := e.Field(name)
	if !ok {
		return sqldb.Column{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, e.Name, name)
	}
	return f.column, nil
}

// PrimaryKey returns the first primary-key field, if any.
func (e *Entity) PrimaryKey() (*Field, bool) {
	for i := range e.Fields {
		if e.Fields[i].PrimaryKey {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// Projection renders `column AS name` for every field in declaration order,
// comma-joined, quoted for dbType.
func (e *Entity) Projection(dbType string) string {
	parts := make([]string, len(e.Fields))
	for i := range e.Fields {
		f := &e.Fields[i]
		parts[i] = sqldb.QuoteIdentifier(dbType, f.column) + " AS " + quoteAlias(dbType, f.Name)
	}
	return strings.Join(parts, ",")
}

func quoteAlias(dbType, name string) string {
	if dbType == sqldb.TypeMySQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

package entity

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

// columnTypes maps a definition type to the column type per db type.
// Index: 0 mysql, 1 pgsql, 2 sqlite.
var columnTypes = map[string][3]string{
	"string":    {"VARCHAR(255)", "VARCHAR(255)", "TEXT"},
	"text":      {"TEXT", "TEXT", "TEXT"},
	"int":       {"INT", "INTEGER", "INTEGER"},
	"integer":   {"INT", "INTEGER", "INTEGER"},
	"bigint":    {"BIGINT", "BIGINT", "INTEGER"},
	"float":     {"FLOAT", "REAL", "REAL"},
	"double":    {"DOUBLE", "DOUBLE PRECISION", "REAL"},
	"decimal":   {"DECIMAL(20,6)", "NUMERIC(20,6)", "NUMERIC"},
	"bool":      {"TINYINT(1)", "BOOLEAN", "INTEGER"},
	"boolean":   {"TINYINT(1)", "BOOLEAN", "INTEGER"},
	"date":      {"DATE", "DATE", "TEXT"},
	"datetime":  {"DATETIME", "TIMESTAMPTZ", "TEXT"},
	"timestamp": {"TIMESTAMP", "TIMESTAMPTZ", "TEXT"},
	"uuid":      {"CHAR(36)", "UUID", "TEXT"},
	"ulid":      {"CHAR(26)", "CHAR(26)", "TEXT"},
	"json":      {"JSON", "JSONB", "TEXT"},
	"blob":      {"BLOB", "BYTEA", "BLOB"},
}

func dialectIndex(dbType string) int {
	switch dbType {
	case sqldb.TypePgSQL:
		return 1
	case sqldb.TypeSQLite:
		return 2
	default:
		return 0
	}
}

func columnType(dbType string, f *Field) (string, error) {
	t := strings.ToLower(f.Type)
	if t == "" {
		t = "string"
	}
	types, ok := columnTypes[t]
	if !ok {
		return "", fmt.Errorf("%w: unsupported type %q for field %s", ErrInvalidEntity, f.Type, f.Name)
	}
	if f.AutoIncrement && f.PrimaryKey {
		switch dbType {
		case sqldb.TypePgSQL:
			if t == "bigint" {
				return "BIGSERIAL", nil
			}
			return "SERIAL", nil
		case sqldb.TypeSQLite:
			// only INTEGER PRIMARY KEY aliases the rowid
			return "INTEGER", nil
		}
	}
	return types[dialectIndex(dbType)], nil
}

// CreateTableSQL renders a non-destructive CREATE TABLE IF NOT EXISTS for e.
func CreateTableSQL(dbType string, e *Entity) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(sqldb.QuoteIdentifier(dbType, e.table))
	b.WriteString(" (")
	var pks []string
	for i := range e.Fields {
		f := &e.Fields[i]
		ct, err := columnType(dbType, f)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqldb.QuoteIdentifier(dbType, f.column))
		b.WriteByte(' ')
		b.WriteString(ct)
		if !f.Nullable() {
			b.WriteString(" NOT NULL")
		}
		if f.Unique {
			b.WriteString(" UNIQUE")
		}
		if f.Default != "" {
			b.WriteString(" DEFAULT ")
			b.WriteString(f.Default)
		}
		if f.PrimaryKey {
			pks = append(pks, sqldb.QuoteIdentifier(dbType, f.column))
			if f.AutoIncrement {
				switch dbType {
				case sqldb.TypeMySQL:
					b.WriteString(" AUTO_INCREMENT")
				case sqldb.TypeSQLite:
					// inline so sqlite treats it as the rowid alias
					b.WriteString(" PRIMARY KEY AUTOINCREMENT")
					pks = pks[:len(pks)-1]
				}
			}
		}
	}
	if len(pks) > 0 {
		b.WriteString(", PRIMARY KEY (")
		b.WriteString(strings.Join(pks, ", "))
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String(), nil
}

// Sync creates the table of e when it does not exist yet. Existing tables are
// never altered.
func Sync(ctx context.Context, h sqldb.Handle, e *Entity) error {
	stmt, err := CreateTableSQL(h.DBType(), e)
	if err != nil {
		return err
	}
	if _, err = h.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("sync %s: %w", e.Name, err)
	}
	log.Printf("[INFO][ENTITY] synced %s (table %s)", e.Name, e.Table)
	return nil
}

package sqldb

import (
	"strconv"
	"strings"
)

const (
	TypeMySQL  = "mysql"
	TypePgSQL  = "pgsql"
	TypeSQLite = "sqlite"
)

// LimitClause renders a paging window for the given db type.
// index is a row offset, size is the row limit.
func LimitClause(dbType string, index, size int) string {
	switch dbType {
	case TypePgSQL:
		return "limit " + strconv.Itoa(size) + " offset " + strconv.Itoa(index)
	default:
		// mysql and sqlite both accept `limit offset,count`
		return "limit " + strconv.Itoa(index) + "," + strconv.Itoa(size)
	}
}

// QuoteIdentifier quotes a validated column/table name for the db type.
// Dotted names are quoted per segment.
func QuoteIdentifier(dbType string, c Column) string {
	q := `"`
	if dbType == TypeMySQL {
		q = "`"
	}
	parts := strings.Split(c.Name(), ".")
	for i, p := range parts {
		parts[i] = q + p + q
	}
	return strings.Join(parts, ".")
}

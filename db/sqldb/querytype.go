package sqldb

import (
	"fmt"
	"strings"
)

// QueryType tags a statement with the kind of result it produces.
type QueryType string

const (
	QuerySelect          QueryType = "SELECT"
	QueryInsert          QueryType = "INSERT"
	QueryUpdate          QueryType = "UPDATE"
	QueryBulkUpdate      QueryType = "BULKUPDATE"
	QueryBulkDelete      QueryType = "BULKDELETE"
	QueryDelete          QueryType = "DELETE"
	QueryUpsert          QueryType = "UPSERT"
	QueryVersion         QueryType = "VERSION"
	QueryShowTables      QueryType = "SHOWTABLES"
	QueryShowIndexes     QueryType = "SHOWINDEXES"
	QueryDescribe        QueryType = "DESCRIBE"
	QueryRaw             QueryType = "RAW"
	QueryForeignKeys     QueryType = "FOREIGNKEYS"
	QueryShowConstraints QueryType = "SHOWCONSTRAINTS"
)

// QueryTypes is the set of type tokens the engine recognizes.
// The value reports whether the type yields a row set.
var QueryTypes = map[QueryType]bool{
	QuerySelect:          true,
	QueryInsert:          false,
	QueryUpdate:          false,
	QueryBulkUpdate:      false,
	QueryBulkDelete:      false,
	QueryDelete:          false,
	QueryUpsert:          false,
	QueryVersion:         true,
	QueryShowTables:      true,
	QueryShowIndexes:     true,
	QueryDescribe:        true,
	QueryRaw:             false,
	QueryForeignKeys:     true,
	QueryShowConstraints: true,
}

// ParseQueryType validates a type token. Matching is case-insensitive.
func ParseQueryType(token string) (QueryType, error) {
	t := QueryType(strings.ToUpper(strings.TrimSpace(token)))
	if _, ok := QueryTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedQueryType, token)
	}
	return t, nil
}

// ReturnsRows reports whether statements of this type are run with QueryRows.
func (t QueryType) ReturnsRows() bool {
	return QueryTypes[t]
}

package sqldb

import "errors"

var (
	ErrNoRows               = errors.New("sqldb: no rows in result set")
	ErrUnsupportedQueryType = errors.New("sqldb: unsupported query type")
	ErrUnboundParam         = errors.New("sqldb: unbound named parameter")
	ErrNoLastInsertID       = errors.New("sqldb: last insert id not reported by driver")
	ErrInvalidIdentifier    = errors.New("sqldb: invalid SQL identifier")
)

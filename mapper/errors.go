package mapper

import (
	"errors"

	"github.com/zeptools/gw-mapper/db/sqldb"
)

var (
	// ErrNoTemplate is returned by template-backed calls of a DAO built without a mapping document.
	ErrNoTemplate = errors.New("no template")
	// ErrTemplateLoad wraps the parse or compile error of a mapping document.
	ErrTemplateLoad = errors.New("template load failed")
	// ErrStatementNotFound is returned when a ready registry has no statement of that name.
	ErrStatementNotFound = errors.New("statement not found")
	// ErrNotSelect is returned when a non-SELECT statement is used for paging.
	ErrNotSelect = errors.New("statement is not a select")
	// ErrNoEntity is returned by CRUD calls of a DAO without an entity.
	ErrNoEntity = errors.New("dao has no entity")
	// ErrInvalidPage is returned for a negative page index or size.
	ErrInvalidPage = errors.New("invalid page")
	// ErrUnsafeWrite is returned by Update and Remove without a where clause.
	ErrUnsafeWrite = errors.New("update or remove without where clause")

	ErrUnsupportedQueryType = sqldb.ErrUnsupportedQueryType
)

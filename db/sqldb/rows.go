package sqldb

// Rows is a forward-only cursor over a query result.
// Callers must Close it; Err reports any failure met while iterating.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Close() error
	Err() error
}

// Row is a single-row result. Errors surface at Scan, with ErrNoRows for an empty result.
type Row interface {
	Scan(dest ...any) error
}

// Result describes an exec. LastInsertId may fail with ErrNoLastInsertID on engines without it.
type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

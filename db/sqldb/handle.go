package sqldb

import "context"

// Handle is the narrow "execute SQL, get rows" contract the mapper runs on.
type Handle interface {
	// Exec executes SQL statement like INSERT, UPDATE, DELETE.
	Exec(ctx context.Context, query string, args ...any) (Result, error)

	QueryRows(ctx context.Context, query string, args ...any) (Rows, error) // Eager. Fail upfront on statement execution
	QueryRow(ctx context.Context, query string, args ...any) Row            // Lazy. only fails at Scan()

	// DBType reports the engine type (mysql, pgsql, sqlite) for placeholder and LIMIT syntax
	DBType() string
}

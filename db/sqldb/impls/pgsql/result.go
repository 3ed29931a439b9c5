package pgsql

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zeptools/gw-mapper/db/sqldb"
)

// Result reports the command tag of an exec.
type Result struct {
	tag pgconn.CommandTag
}

var _ sqldb.Result = (*Result)(nil)

func (r *Result) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

// LastInsertId always fails; generated keys come back through an INSERT ... RETURNING mapped as a select.
func (r *Result) LastInsertId() (int64, error) {
	return 0, sqldb.ErrNoLastInsertID
}

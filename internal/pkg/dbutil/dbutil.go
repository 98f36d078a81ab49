package dbutil

import (
	"github.com/jmoiron/sqlx"
)

// Finalize rewrites ?-style placeholders produced by the query builder into
// the $N form Postgres expects.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

// Package sqlxrepos implements the core repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/academia/core"
)

// getExec resolves the executor to run against: the service-provided one
// (a transaction started by core.DB.BeginTx) when present, the repository's
// own DB otherwise.
func getExec(base sqlx.ExtContext, svcExec []core.DBExecutor) sqlx.ExtContext {
	if len(svcExec) > 0 {
		if ext, ok := svcExec[0].(sqlx.ExtContext); ok {
			return ext
		}
	}
	return base
}

// queryBuilder accumulates WHERE conditions with positional args.
type queryBuilder struct {
	conds []string
	args  []interface{}
}

func (qb *queryBuilder) where(cond string, args ...interface{}) {
	for _, arg := range args {
		qb.args = append(qb.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(qb.args)), 1)
	}
	qb.conds = append(qb.conds, cond)
}

func (qb *queryBuilder) clause() string {
	if len(qb.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(qb.conds, " AND ")
}

func (qb *queryBuilder) arg(val interface{}) string {
	qb.args = append(qb.args, val)
	return fmt.Sprintf("$%d", len(qb.args))
}

func orderingClause(ordering []core.DBOrdering, dflt string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + dflt
	}
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func paginationClause(qb *queryBuilder, page *core.Pagination) string {
	if page == nil {
		return ""
	}
	return " LIMIT " + qb.arg(page.Limit()) + " OFFSET " + qb.arg(page.Offset())
}

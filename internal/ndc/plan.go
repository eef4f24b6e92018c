package ndc

import "github.com/hasura/ndc-postgres-go/internal/sqlast"

// Statement is one parameterized SQL statement the runtime executes. Params
// is ordered to match the $1..$n placeholders in Sql exactly.
type Statement struct {
	Sql    string
	Params []sqlast.Param
}

// ExecutionPlan is the translator's complete output for one request: the
// statements to run first (Pre), the main query or mutation statements
// (Query), and the statements to run last (Post), executed in that order.
// A query plan has one Query statement, with any native-query CTEs in its
// own WITH clause, and no Pre or Post. A mutation plan has one Query
// statement per operation, with BEGIN ISOLATION LEVEL ... in Pre and COMMIT
// in Post.
type ExecutionPlan struct {
	Pre   []Statement
	Query []Statement
	Post  []Statement
}

func NewStatement(sql string, params []sqlast.Param) Statement {
	return Statement{Sql: sql, Params: params}
}

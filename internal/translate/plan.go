package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// BuildQueryPlan is the top-level entry point for POST /query: it builds a
// fresh Env/State pair from the catalog and request, runs TranslateQuery,
// and renders the result plus any native-query CTEs the translation
// discovered into a single executable statement. A query request never
// needs a Pre or Post phase — those exist for mutations (see
// mutation_plan.go).
func BuildQueryPlan(m *metadata.Metadata, request ndc.QueryRequest) (*ndc.ExecutionPlan, error) {
	state := NewState()
	env := NewEnv(m, request.CollectionRelationships, nil)

	sel, err := TranslateQuery(env, state, request)
	if err != nil {
		return nil, err
	}

	ctes, err := MaterializeNativeQueries(env, state)
	if err != nil {
		return nil, err
	}

	stmt := sqlast.Statement{Kind: sqlast.StmtSelect, With: ctes, Select: sel}
	sql, params := sqlast.Render(stmt)

	return &ndc.ExecutionPlan{Query: []ndc.Statement{ndc.NewStatement(sql, params)}}, nil
}

package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// translateRelationshipField is the relationship field translator (spec
// §4.6): a fresh RELATIONSHIP_<name> table alias is allocated for the target
// collection, correlated to the outer row via the relationship's
// column_mapping, and the whole join is deferred to a single LEFT OUTER JOIN
// LATERAL once the recursive target query has been translated. Object
// relationships project row_to_json(inner); array relationships project
// coalesce(json_agg(row_to_json(inner)), '[]').
func translateRelationshipField(env *Env, state *State, scopes RootAndCurrentTables, table TableNameAndReference, alias string, field ndc.Field) (sqlast.SelectItem, sqlast.Join, error) {
	rel, err := env.LookupRelationship(field.Relationship)
	if err != nil {
		return sqlast.SelectItem{}, sqlast.Join{}, err
	}

	targetCollection, err := env.LookupCollection(rel.TargetCollection)
	if err != nil {
		return sqlast.SelectItem{}, sqlast.Join{}, err
	}

	mergedArgs := mergeArguments(rel.Arguments, field.Arguments)

	targetAlias := state.MakeRelationshipTableAlias(field.Relationship)
	var from *sqlast.From
	switch targetCollection.Kind {
	case CollectionNativeQuery:
		cteRef := state.InsertNativeQuery(rel.TargetCollection, mergedArgs)
		from = &sqlast.From{Kind: sqlast.FromTable, Table: cteRef, Alias: targetAlias}
	default:
		from = &sqlast.From{Kind: sqlast.FromTable, Table: tableReferenceFor(targetCollection), Alias: targetAlias}
	}
	targetRef := sqlast.AliasedTable(targetAlias)

	joinCond := correlationConjunction(table.Reference, targetRef, rel.ColumnMapping)

	newCurrent := TableNameAndReference{Name: rel.TargetCollection, Reference: targetRef}
	innerScopes := RootAndCurrentTables{Root: scopes.Root, Current: newCurrent}

	var query ndc.Query
	if field.Query != nil {
		query = *field.Query
	}

	rowsSelect, err := translateRowsSelect(env, state, innerScopes, from, query)
	if err != nil {
		return sqlast.SelectItem{}, sqlast.Join{}, err
	}
	rowsSelect.Where = sqlast.AndExpr(joinCond, rowsSelect.Where)

	rowAlias := state.MakeRelationshipTableAlias(field.Relationship + "_row")

	var collected sqlast.Expression
	switch rel.RelationshipType {
	case ndc.RelationshipArray:
		jsonAgg := sqlast.FunctionCallExpr("json_agg", sqlast.RowToJSONExpr(sqlast.AliasedTable(rowAlias)))
		collected = sqlast.FunctionCallExpr("coalesce", jsonAgg, sqlast.CastExpr(sqlast.ValueExpr(sqlast.JSONValue([]byte("[]"))), sqlast.NewScalarTypeName("json")))
	default: // RelationshipObject
		collected = sqlast.RowToJSONExpr(sqlast.AliasedTable(rowAlias))
	}

	outer := &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("collected"), Expr: collected}),
		From:       &sqlast.From{Kind: sqlast.FromSelect, Select: rowsSelect, Alias: rowAlias},
		Where:      sqlast.TrueExpr(),
	}

	joinAlias := state.MakeRelationshipTableAlias(field.Relationship + "_join")
	join := sqlast.LeftOuterJoinLateral(outer, joinAlias)
	item := sqlast.SelectItem{
		Alias: sqlast.NewColumnAlias(alias),
		Expr:  sqlast.ColumnRefExpr(sqlast.AliasedColumn(sqlast.AliasedTable(joinAlias), sqlast.NewColumnAlias("collected"))),
	}
	return item, join, nil
}

// mergeArguments layers a field's call-site relationship arguments over the
// relationship's own declared defaults.
func mergeArguments(base, overrides map[string]ndc.Argument) map[string]ndc.Argument {
	merged := make(map[string]ndc.Argument, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// newBaseTableScope allocates a fresh alias for a collection and returns the
// TableNameAndReference scoped translation steps thread around, plus the
// From clause that introduces it. Native query collections are materialized
// as a CTE via State.InsertNativeQuery first, so by the time this returns,
// reading from the reference is always just a FROM of an alias.
func newBaseTableScope(env *Env, state *State, collectionName string, arguments map[string]ndc.Argument, hint string) (TableNameAndReference, *sqlast.From, error) {
	collection, err := env.LookupCollection(collectionName)
	if err != nil {
		return TableNameAndReference{}, nil, err
	}

	alias := state.MakeTableAlias(hint)
	ref := sqlast.AliasedTable(alias)

	switch collection.Kind {
	case CollectionNativeQuery:
		cteRef := state.InsertNativeQuery(collectionName, arguments)
		from := &sqlast.From{Kind: sqlast.FromTable, Table: cteRef, Alias: alias}
		return TableNameAndReference{Name: collectionName, Reference: ref}, from, nil
	default:
		from := &sqlast.From{Kind: sqlast.FromTable, Table: sqlast.DBTable(collection.Table.SchemaName, collection.Table.TableName), Alias: alias}
		return TableNameAndReference{Name: collectionName, Reference: ref}, from, nil
	}
}

// translateRowsSelect builds the "rows" branch of a query: a SELECT
// producing the requested fields, filtered, ordered, and paginated, over an
// already-scoped collection.
func translateRowsSelect(env *Env, state *State, scopes RootAndCurrentTables, from *sqlast.From, query ndc.Query) (*sqlast.Select, error) {
	items, fieldJoins, err := TranslateFields(env, state, scopes, scopes.Current, query.Fields)
	if err != nil {
		return nil, err
	}

	where := sqlast.TrueExpr()
	if query.Predicate != nil {
		where, err = TranslateExpression(env, state, scopes, *query.Predicate)
		if err != nil {
			return nil, err
		}
	}

	orderBy, orderJoins, err := TranslateOrderBy(env, state, scopes, query.OrderBy)
	if err != nil {
		return nil, err
	}

	return &sqlast.Select{
		SelectList: sqlast.ListSelectList(items...),
		From:       from,
		Joins:      append(fieldJoins, orderJoins...),
		Where:      where,
		OrderBy:    orderBy,
		Limit:      sqlast.Limit{Limit: query.Limit, Offset: query.Offset},
	}, nil
}

// translateAggregatesSelect builds the "aggregates" branch: one row with one
// column per requested aggregate, no LIMIT/OFFSET/ORDER BY (aggregates
// summarize the whole filtered set, not a page of it).
func translateAggregatesSelect(env *Env, state *State, scopes RootAndCurrentTables, from *sqlast.From, query ndc.Query) (*sqlast.Select, error) {
	items := make([]sqlast.SelectItem, 0, len(query.Aggregates))
	for alias, agg := range query.Aggregates {
		expr, err := translateAggregate(env, scopes, agg)
		if err != nil {
			return nil, err
		}
		items = append(items, sqlast.SelectItem{Alias: sqlast.NewColumnAlias(alias), Expr: expr})
	}

	where := sqlast.TrueExpr()
	var err error
	if query.Predicate != nil {
		where, err = TranslateExpression(env, state, scopes, *query.Predicate)
		if err != nil {
			return nil, err
		}
	}

	return &sqlast.Select{
		SelectList: sqlast.ListSelectList(items...),
		From:       from,
		Where:      where,
	}, nil
}

func translateAggregate(env *Env, scopes RootAndCurrentTables, agg ndc.Aggregate) (sqlast.Expression, error) {
	switch agg.Kind {
	case ndc.AggregateStarCount:
		return sqlast.FunctionCallExpr("count", sqlast.RawExpr("*")), nil

	case ndc.AggregateColumnCount:
		colExpr, _, err := resolveComparisonTarget(env, scopes, &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: agg.Column})
		if err != nil {
			return sqlast.Expression{}, err
		}
		if agg.Distinct {
			sql, _ := sqlast.RenderExpression(colExpr)
			return sqlast.FunctionCallExpr("count", sqlast.RawExpr("DISTINCT "+sql)), nil
		}
		return sqlast.FunctionCallExpr("count", colExpr), nil

	default: // AggregateSingleColumn
		collection, err := env.LookupCollection(scopes.Current.Name)
		if err != nil {
			return sqlast.Expression{}, err
		}
		col, err := collection.LookupColumn(agg.Column)
		if err != nil {
			return sqlast.Expression{}, err
		}
		if col.Type.Kind != metadata.TypeScalar {
			return sqlast.Expression{}, errUnexpectedStructure("aggregate target is not a scalar column")
		}
		if _, err := env.LookupAggregateFunction(col.Type.ScalarType, agg.Function); err != nil {
			return sqlast.Expression{}, err
		}
		colExpr := sqlast.ColumnRefExpr(sqlast.TableColumn(scopes.Current.Reference, agg.Column))
		return sqlast.FunctionCallExpr(agg.Function, colExpr), nil
	}
}

// TranslateQuery is the query root (spec §4.2/§4.8): it composes the rows
// and aggregates branches, wrapped as two correlated scalar subselects, into
// a single response-shaped row with "rows" and/or "aggregates" keys. When
// the request carries Variables, Env is rebound to the synthetic variables
// table so every nested translation step sees it; the runtime binds the
// actual variables parameter when it executes the rendered statement once
// per row of that table (see internal/server).
func TranslateQuery(env *Env, state *State, request ndc.QueryRequest) (*sqlast.Select, error) {
	bodyEnv := env
	var variablesFrom *sqlast.From
	if len(request.Variables) > 0 {
		alias := state.MakeVariablesTableAlias()
		ref := sqlast.AliasedTable(alias)
		bodyEnv = NewEnv(env.metadata, env.relationships, &ref)
		variablesFrom = &sqlast.From{Kind: sqlast.FromVariables, Alias: alias}
	}

	table, from, err := newBaseTableScope(bodyEnv, state, request.Collection, request.Arguments, request.Collection)
	if err != nil {
		return nil, err
	}
	scopes := RootAndCurrentTables{Root: table, Current: table}

	items := []sqlast.SelectItem{}

	if len(request.Query.Fields) > 0 {
		rowsSelect, err := translateRowsSelect(bodyEnv, state, scopes, from, request.Query)
		if err != nil {
			return nil, err
		}
		rowsAlias := state.MakeTableAlias(request.Collection + "_rows")
		jsonAgg := sqlast.FunctionCallExpr("json_agg", sqlast.RowToJSONExpr(sqlast.AliasedTable(rowsAlias)))
		coalesced := sqlast.FunctionCallExpr("coalesce", jsonAgg, sqlast.CastExpr(sqlast.ValueExpr(sqlast.JSONValue([]byte("[]"))), sqlast.NewScalarTypeName("json")))
		wrapped := &sqlast.Select{
			SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("agg"), Expr: coalesced}),
			From:       &sqlast.From{Kind: sqlast.FromSelect, Select: rowsSelect, Alias: rowsAlias},
			Where:      sqlast.TrueExpr(),
		}
		items = append(items, sqlast.SelectItem{Alias: sqlast.NewColumnAlias("rows"), Expr: sqlast.CorrelatedSubSelectExpr(wrapped)})
	}

	if len(request.Query.Aggregates) > 0 {
		aggSelect, err := translateAggregatesSelect(bodyEnv, state, scopes, from, request.Query)
		if err != nil {
			return nil, err
		}
		aggAlias := state.MakeTableAlias(request.Collection + "_aggregates")
		wrapped := &sqlast.Select{
			SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("agg"), Expr: sqlast.RowToJSONExpr(sqlast.AliasedTable(aggAlias))}),
			From:       &sqlast.From{Kind: sqlast.FromSelect, Select: aggSelect, Alias: aggAlias},
			Where:      sqlast.TrueExpr(),
		}
		items = append(items, sqlast.SelectItem{Alias: sqlast.NewColumnAlias("aggregates"), Expr: sqlast.CorrelatedSubSelectExpr(wrapped)})
	}

	return &sqlast.Select{SelectList: sqlast.ListSelectList(items...), From: variablesFrom, Where: sqlast.TrueExpr()}, nil
}

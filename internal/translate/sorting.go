package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateOrderBy is the sort-key translator (spec §4.7): a column or
// aggregate on the current collection, or reached through a path of
// relationships. Null ordering is fixed by direction (ASC -> NULLS LAST,
// DESC -> NULLS FIRST), not left to the caller.
func TranslateOrderBy(env *Env, state *State, scopes RootAndCurrentTables, orderBy *ndc.OrderBy) ([]sqlast.OrderByItem, []sqlast.Join, error) {
	if orderBy == nil || len(orderBy.Elements) == 0 {
		return nil, nil, nil
	}

	var items []sqlast.OrderByItem
	var joins []sqlast.Join
	for _, el := range orderBy.Elements {
		item, elJoins, err := translateOrderByElement(env, state, scopes, el)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		joins = append(joins, elJoins...)
	}
	return items, joins, nil
}

// translateOrderByElement walks target.Path with one passthrough lateral
// join per hop (each exposing the related row's columns under a fresh
// alias), then resolves the final column or aggregate against the
// innermost hop. A non-empty path always needs one more lateral wrap so the
// resolved value can be referenced as a plain column at the top ORDER BY
// level, matching the pattern field projection uses for nested values.
func translateOrderByElement(env *Env, state *State, scopes RootAndCurrentTables, el ndc.OrderByElement) (sqlast.OrderByItem, []sqlast.Join, error) {
	target := el.Target
	current := scopes.Current
	var joins []sqlast.Join

	for _, relName := range target.Path {
		rel, err := env.LookupRelationship(relName)
		if err != nil {
			return sqlast.OrderByItem{}, nil, err
		}
		targetCollection, err := env.LookupCollection(rel.TargetCollection)
		if err != nil {
			return sqlast.OrderByItem{}, nil, err
		}

		physicalAlias := state.MakeOrderPathPartTableAlias(rel.TargetCollection)
		physicalRef := sqlast.AliasedTable(physicalAlias)
		joinCond := correlationConjunction(current.Reference, physicalRef, rel.ColumnMapping)

		inner := &sqlast.Select{
			SelectList: sqlast.StarSelectList(),
			From:       &sqlast.From{Kind: sqlast.FromTable, Table: tableReferenceFor(targetCollection), Alias: physicalAlias},
			Where:      joinCond,
		}

		hopAlias := state.MakeOrderPathPartTableAlias(rel.TargetCollection)
		join := sqlast.LeftOuterJoinLateral(inner, hopAlias)
		joins = append(joins, join)
		current = TableNameAndReference{Name: rel.TargetCollection, Reference: sqlast.AliasedTable(hopAlias)}
	}

	targetCollection, err := env.LookupCollection(current.Name)
	if err != nil {
		return sqlast.OrderByItem{}, nil, err
	}

	var valExpr sqlast.Expression
	switch target.Kind {
	case ndc.OrderTargetStarCountAggregate:
		valExpr = sqlast.FunctionCallExpr("count", sqlast.RawExpr("*"))

	case ndc.OrderTargetSingleColumnAggregate:
		col, err := targetCollection.LookupColumn(target.Name)
		if err != nil {
			return sqlast.OrderByItem{}, nil, err
		}
		if _, err := env.LookupAggregateFunction(col.Type.ScalarType, target.Function); err != nil {
			return sqlast.OrderByItem{}, nil, err
		}
		valExpr = sqlast.FunctionCallExpr(target.Function, sqlast.ColumnRefExpr(sqlast.TableColumn(current.Reference, target.Name)))

	default: // OrderTargetColumn
		if _, err := targetCollection.LookupColumn(target.Name); err != nil {
			return sqlast.OrderByItem{}, nil, err
		}
		valExpr = sqlast.ColumnRefExpr(sqlast.TableColumn(current.Reference, target.Name))
	}

	direction := sqlast.Asc
	nulls := sqlast.NullsLast
	if el.OrderDirection == ndc.OrderDesc {
		direction = sqlast.Desc
		nulls = sqlast.NullsFirst
	}

	if len(target.Path) == 0 {
		return sqlast.OrderByItem{Expr: valExpr, Direction: direction, Nulls: nulls}, joins, nil
	}

	valueAlias := state.MakeOrderByTableAlias(current.Name)
	wrap := &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("value"), Expr: valExpr}),
		Where:      sqlast.TrueExpr(),
	}
	joins = append(joins, sqlast.LeftOuterJoinLateral(wrap, valueAlias))

	orderExpr := sqlast.ColumnRefExpr(sqlast.AliasedColumn(sqlast.AliasedTable(valueAlias), sqlast.NewColumnAlias("value")))
	return sqlast.OrderByItem{Expr: orderExpr, Direction: direction, Nulls: nulls}, joins, nil
}

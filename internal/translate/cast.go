package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// ApplyTypeRepresentationCast wraps a projected column expression per
// spec §4.10: Int64AsString and BigDecimalAsString representations cast to
// text so the value survives a JSON round-trip without precision loss;
// every other representation renders the expression unchanged. Arrays cast
// element-wise.
func ApplyTypeRepresentationCast(env *Env, state *State, expr sqlast.Expression, colType metadata.Type) sqlast.Expression {
	switch colType.Kind {
	case metadata.TypeScalar:
		rep := env.LookupTypeRepresentation(colType.ScalarType)
		if rep.NeedsTextCast() {
			return sqlast.CastExpr(expr, sqlast.NewScalarTypeName("text"))
		}
		return expr

	case metadata.TypeArray:
		elem := *colType.ElementType
		if elem.Kind != metadata.TypeScalar {
			return expr
		}
		rep := env.LookupTypeRepresentation(elem.ScalarType)
		if !rep.NeedsTextCast() {
			return expr
		}
		return castArrayElementsToText(state, expr)

	default:
		return expr
	}
}

// castArrayElementsToText builds
// (SELECT array_agg(CAST(u.element AS text)) FROM unnest(<expr>) AS u(element)).
func castArrayElementsToText(state *State, expr sqlast.Expression) sqlast.Expression {
	alias := state.MakeTableAlias("CAST_ARRAY")
	unnested := sqlast.FunctionCallExpr("unnest", expr)
	sel := &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{
			Alias: sqlast.NewColumnAlias("agg"),
			Expr: sqlast.FunctionCallExpr("array_agg",
				sqlast.CastExpr(sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.AliasedTable(alias), "element")), sqlast.NewScalarTypeName("text"))),
		}),
		From:  &sqlast.From{Kind: sqlast.FromSelect, Select: unnestFrom(unnested, alias), Alias: alias},
		Where: sqlast.TrueExpr(),
	}
	return sqlast.CorrelatedSubSelectExpr(sel)
}

// unnestFrom wraps `unnest(expr)` so it can be used as a single-column FROM
// source aliased element(element); sqlast's From has no dedicated unnest
// variant (only jsonb_array_elements), so a minimal SELECT wrapper is used
// instead of widening the AST for a single caller.
func unnestFrom(unnested sqlast.Expression, alias sqlast.TableAlias) *sqlast.Select {
	return &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("element"), Expr: unnested}),
		Where:      sqlast.TrueExpr(),
	}
}

package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateExpression is the predicate translator (spec §4.5): And/Or/Not
// combinators, unary and binary column comparisons, and Exists over a
// related or unrelated collection. scopes carries the Root/Current table
// binding that column references resolve against.
func TranslateExpression(env *Env, state *State, scopes RootAndCurrentTables, expr ndc.Expression) (sqlast.Expression, error) {
	switch expr.Kind {
	case ndc.ExprAnd:
		children, err := translateChildren(env, state, scopes, expr.Children)
		if err != nil {
			return sqlast.Expression{}, err
		}
		return sqlast.AndExpr(children...), nil

	case ndc.ExprOr:
		children, err := translateChildren(env, state, scopes, expr.Children)
		if err != nil {
			return sqlast.Expression{}, err
		}
		return sqlast.OrExpr(children...), nil

	case ndc.ExprNot:
		inner, err := TranslateExpression(env, state, scopes, *expr.Operand)
		if err != nil {
			return sqlast.Expression{}, err
		}
		return sqlast.NotExpr(inner), nil

	case ndc.ExprUnaryComparisonOperator:
		return translateUnaryComparison(env, scopes, expr)

	case ndc.ExprBinaryComparisonOperator:
		return translateBinaryComparison(env, state, scopes, expr)

	case ndc.ExprExists:
		return translateExists(env, state, scopes, expr)

	default:
		return sqlast.Expression{}, errUnexpectedStructure("unknown predicate expression kind")
	}
}

func translateChildren(env *Env, state *State, scopes RootAndCurrentTables, children []ndc.Expression) ([]sqlast.Expression, error) {
	out := make([]sqlast.Expression, 0, len(children))
	for _, c := range children {
		translated, err := TranslateExpression(env, state, scopes, c)
		if err != nil {
			return nil, err
		}
		out = append(out, translated)
	}
	return out, nil
}

// resolveComparisonTarget resolves an ndc.ComparisonTarget against scopes,
// returning the bound sqlast column reference expression and the column's
// declared catalog type (needed to translate the comparison value at the
// right type).
func resolveComparisonTarget(env *Env, scopes RootAndCurrentTables, target *ndc.ComparisonTarget) (sqlast.Expression, metadata.Type, error) {
	var table TableNameAndReference
	switch target.Kind {
	case ndc.ComparisonTargetRootColumn:
		table = scopes.Root
	default:
		table = scopes.Current
	}

	collection, err := env.LookupCollection(table.Name)
	if err != nil {
		return sqlast.Expression{}, metadata.Type{}, err
	}
	col, err := collection.LookupColumn(target.Name)
	if err != nil {
		return sqlast.Expression{}, metadata.Type{}, err
	}

	var colExpr sqlast.ColumnReference
	if target.Kind == ndc.ComparisonTargetRootColumn {
		colExpr = sqlast.RootColumn(table.Reference, target.Name)
	} else {
		colExpr = sqlast.TableColumn(table.Reference, target.Name)
	}
	expr := sqlast.ColumnRefExpr(colExpr)

	// A non-empty Path traverses nested composite fields before reaching
	// Name; Postgres addresses those as a parenthesized dotted chain.
	for _, field := range target.Path {
		expr = sqlast.RawExpr(renderRawRowFieldAccess(expr, field))
	}

	return expr, col.Type, nil
}

// renderRawRowFieldAccess is a minimal helper for the uncommon nested
// composite-path case in predicates; it is not used by the main field
// projection pipeline, which builds real lateral joins instead (see
// fields.go).
func renderRawRowFieldAccess(expr sqlast.Expression, field string) string {
	sql, _ := sqlast.RenderExpression(expr)
	return "(" + sql + ")." + `"` + field + `"`
}

func translateUnaryComparison(env *Env, scopes RootAndCurrentTables, expr ndc.Expression) (sqlast.Expression, error) {
	colExpr, _, err := resolveComparisonTarget(env, scopes, expr.Column)
	if err != nil {
		return sqlast.Expression{}, err
	}
	switch expr.Operator {
	case ndc.UnaryIsNull:
		return sqlast.UnaryOpExpr("IS NULL", colExpr), nil
	default:
		return sqlast.Expression{}, errUnexpectedStructure("unknown unary comparison operator")
	}
}

func translateBinaryComparison(env *Env, state *State, scopes RootAndCurrentTables, expr ndc.Expression) (sqlast.Expression, error) {
	colExpr, colType, err := resolveComparisonTarget(env, scopes, expr.Column)
	if err != nil {
		return sqlast.Expression{}, err
	}
	if colType.Kind != metadata.TypeScalar {
		return sqlast.Expression{}, errUnexpectedStructure("comparison target is not a scalar column")
	}

	op, err := env.LookupComparisonOperator(colType.ScalarType, expr.BinOperator)
	if err != nil {
		return sqlast.Expression{}, err
	}

	valueExpr, err := translateComparisonValue(env, state, scopes, expr.Value, op.ArgumentType)
	if err != nil {
		return sqlast.Expression{}, err
	}

	switch op.Kind {
	case metadata.OperatorEqual:
		return sqlast.BinaryOpExpr("=", colExpr, valueExpr), nil
	case metadata.OperatorIn:
		return sqlast.InExpr(colExpr, valueExpr), nil
	default:
		return sqlast.BinaryOpExpr(op.Operator, colExpr, valueExpr), nil
	}
}

// translateComparisonValue handles the three ComparisonValue shapes: a
// sibling column, a literal scalar, or a request variable.
func translateComparisonValue(env *Env, state *State, scopes RootAndCurrentTables, value *ndc.ComparisonValue, expectedType metadata.Type) (sqlast.Expression, error) {
	switch value.Kind {
	case ndc.ComparisonValueColumn:
		colExpr, _, err := resolveComparisonTarget(env, scopes, value.Column)
		return colExpr, err
	case ndc.ComparisonValueVariable:
		return TranslateVariable(env, state, value.Name, expectedType)
	default:
		return TranslateJSONValue(state, value.Value, expectedType)
	}
}

func translateExists(env *Env, state *State, scopes RootAndCurrentTables, expr ndc.Expression) (sqlast.Expression, error) {
	in := expr.InCollection

	var targetName string
	var joinCondition sqlast.Expression
	var targetAlias sqlast.TableAlias

	switch in.Kind {
	case ndc.ExistsRelated:
		rel, err := env.LookupRelationship(in.Relationship)
		if err != nil {
			return sqlast.Expression{}, err
		}
		targetName = rel.TargetCollection
		targetAlias = state.MakeBooleanExpressionTableAlias(targetName)
		targetRef := sqlast.AliasedTable(targetAlias)
		joinCondition = correlationConjunction(scopes.Current.Reference, targetRef, rel.ColumnMapping)

	case ndc.ExistsUnrelated:
		targetName = in.Collection
		targetAlias = state.MakeBooleanExpressionTableAlias(targetName)
		joinCondition = sqlast.TrueExpr()

	default:
		return sqlast.Expression{}, errUnexpectedStructure("unknown exists-in-collection kind")
	}

	collection, err := env.LookupCollection(targetName)
	if err != nil {
		return sqlast.Expression{}, err
	}

	newCurrent := TableNameAndReference{Name: targetName, Reference: sqlast.AliasedTable(targetAlias)}
	innerScopes := scopes.WithCurrent(newCurrent)

	var predicate sqlast.Expression = sqlast.TrueExpr()
	if expr.Predicate != nil {
		predicate, err = TranslateExpression(env, state, innerScopes, *expr.Predicate)
		if err != nil {
			return sqlast.Expression{}, err
		}
	}

	sel := &sqlast.Select{
		SelectList: sqlast.StarSelectList(),
		From:       &sqlast.From{Kind: sqlast.FromTable, Table: tableReferenceFor(collection), Alias: targetAlias},
		Where:      sqlast.AndExpr(joinCondition, predicate),
	}
	return sqlast.ExistsExpr(sel, false), nil
}

// tableReferenceFor returns the DB table a collection reads from. Native
// query collections are resolved by the caller through State before this
// point is reached in the full query path; Exists over a native query is out
// of scope for this connector's predicate language.
func tableReferenceFor(c CollectionInfo) sqlast.TableReference {
	return sqlast.DBTable(c.Table.SchemaName, c.Table.TableName)
}

// correlationConjunction turns a relationship's column_mapping into the
// WHERE conjunct equating each outer column to its inner counterpart.
func correlationConjunction(outer, inner sqlast.TableReference, columnMapping map[string]string) sqlast.Expression {
	if len(columnMapping) == 0 {
		return sqlast.TrueExpr()
	}
	conjuncts := make([]sqlast.Expression, 0, len(columnMapping))
	for outerCol, innerCol := range columnMapping {
		conjuncts = append(conjuncts, sqlast.BinaryOpExpr("=",
			sqlast.ColumnRefExpr(sqlast.TableColumn(outer, outerCol)),
			sqlast.ColumnRefExpr(sqlast.TableColumn(inner, innerCol)),
		))
	}
	return sqlast.AndExpr(conjuncts...)
}

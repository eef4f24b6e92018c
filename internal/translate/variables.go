package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateVariable turns a reference to a named request variable into a SQL
// expression typed as expectedType. Per spec §4.4, access always goes
// through the synthetic variables table: `variables_table.variables ->
// 'name'`, then the same scalar/array/composite pipeline §4.3 uses for
// literal JSON values.
func TranslateVariable(env *Env, state *State, name string, expectedType metadata.Type) (sqlast.Expression, error) {
	varTable, err := env.GetVariablesTable()
	if err != nil {
		return sqlast.Expression{}, err
	}
	variablesColumn := sqlast.ColumnRefExpr(sqlast.TableColumn(varTable, "variables"))

	switch expectedType.Kind {
	case metadata.TypeArray:
		arrow := sqlast.BinaryOpExpr("->", variablesColumn, sqlast.ValueExpr(sqlast.StringValue(name)))
		return jsonbArrayAgg(state, arrow, *expectedType.ElementType), nil

	case metadata.TypeComposite:
		arrow := sqlast.BinaryOpExpr("->", variablesColumn, sqlast.ValueExpr(sqlast.StringValue(name)))
		return populateOrCast(arrow, expectedType), nil

	default:
		arrowText := sqlast.BinaryOpExpr("->>", variablesColumn, sqlast.ValueExpr(sqlast.StringValue(name)))
		return sqlast.CastExpr(arrowText, scalarTypeNameFor(expectedType)), nil
	}
}

// TranslateProjectedVariable is TranslateVariable's counterpart for
// projecting a request variable as a field value: it performs the identical
// variables-table lookup. It applies no type-representation cast, and
// TranslateFields (fields.go) does not call it; field projection covers
// physical columns and relationships only.
func TranslateProjectedVariable(env *Env, state *State, name string, expectedType metadata.Type) (sqlast.Expression, error) {
	return TranslateVariable(env, state, name, expectedType)
}

// TranslateArgumentValue is the single entry point argument-consuming
// translators (predicates, relationship arguments, native-query arguments)
// call: it dispatches an ndc.Argument to literal JSON translation or
// variable-table lookup based on its wire-level Kind.
func TranslateArgumentValue(env *Env, state *State, arg ndc.Argument, expectedType metadata.Type) (sqlast.Expression, error) {
	switch arg.Kind {
	case ndc.ArgumentVariable:
		return TranslateVariable(env, state, arg.Name, expectedType)
	default:
		return TranslateJSONValue(state, arg.Value, expectedType)
	}
}

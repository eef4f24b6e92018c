package translate

import (
	"encoding/json"
	"fmt"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// scalarTypeNameFor turns a catalog Type into the sqlast.ScalarTypeName used
// in CAST(... AS <type>) expressions. It only makes sense for Type values
// whose Kind is TypeScalar or TypeComposite (a composite type name is a
// valid CAST target too, e.g. CAST(NULL AS "Address")); TypeArray has no
// single SQL type name and callers must not pass one here.
func scalarTypeNameFor(t metadata.Type) sqlast.ScalarTypeName {
	switch t.Kind {
	case metadata.TypeScalar:
		return sqlast.NewScalarTypeName(t.ScalarType)
	case metadata.TypeComposite:
		return sqlast.NewScalarTypeName(t.CompositeType)
	default:
		return sqlast.NewScalarTypeName("jsonb")
	}
}

// jsonKind classifies a raw JSON value's top-level shape without fully
// decoding it, mirroring the four cases translate_json_value switches on.
type jsonKind int

const (
	jsonNull jsonKind = iota
	jsonBool
	jsonNumber
	jsonString
	jsonArray
	jsonObject
)

func classifyJSON(raw json.RawMessage) (jsonKind, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, fmt.Errorf("translate: invalid JSON value: %w", err)
	}
	switch v := probe.(type) {
	case nil:
		return jsonNull, nil
	case bool:
		return jsonBool, nil
	case float64:
		return jsonNumber, nil
	case string:
		return jsonString, nil
	case []any:
		return jsonArray, nil
	case map[string]any:
		return jsonObject, nil
	default:
		return 0, fmt.Errorf("translate: unrepresentable JSON value kind %T", v)
	}
}

// TranslateJSONValue turns a JSON literal into a sqlast.Expression typed as
// expectedType, per spec §4.3. Literals never appear inline in rendered SQL:
// every path below routes the raw bytes through sqlast.ValueExpr(JSONValue)
// or StringValue/BoolValue/Float8Value, which the renderer always binds as a
// parameter.
func TranslateJSONValue(state *State, raw json.RawMessage, expectedType metadata.Type) (sqlast.Expression, error) {
	kind, err := classifyJSON(raw)
	if err != nil {
		return sqlast.Expression{}, err
	}

	switch kind {
	case jsonNull:
		return sqlast.CastExpr(sqlast.ValueExpr(sqlast.NullValue()), scalarTypeNameFor(expectedType)), nil

	case jsonBool:
		if expectedType.Kind != metadata.TypeScalar {
			return castThroughJSONB(raw, expectedType), nil
		}
		var b bool
		_ = json.Unmarshal(raw, &b)
		return sqlast.CastExpr(sqlast.ValueExpr(sqlast.BoolValue(b)), scalarTypeNameFor(expectedType)), nil

	case jsonNumber:
		if expectedType.Kind != metadata.TypeScalar {
			return castThroughJSONB(raw, expectedType), nil
		}
		var f float64
		_ = json.Unmarshal(raw, &f)
		return sqlast.CastExpr(sqlast.ValueExpr(sqlast.Float8Value(f)), scalarTypeNameFor(expectedType)), nil

	case jsonString:
		if expectedType.Kind != metadata.TypeScalar {
			return castThroughJSONB(raw, expectedType), nil
		}
		var s string
		_ = json.Unmarshal(raw, &s)
		return sqlast.CastExpr(sqlast.ValueExpr(sqlast.StringValue(s)), scalarTypeNameFor(expectedType)), nil

	case jsonArray:
		if expectedType.Kind != metadata.TypeArray {
			return castThroughJSONB(raw, expectedType), nil
		}
		return translateJSONArray(state, raw, *expectedType.ElementType), nil

	case jsonObject:
		if expectedType.Kind != metadata.TypeComposite {
			return castThroughJSONB(raw, expectedType), nil
		}
		return translateJSONObject(raw, expectedType), nil
	}

	return sqlast.Expression{}, errUnexpectedStructure("unreachable JSON kind")
}

// castThroughJSONB is the deliberate "soft" fallback for a JSON
// constructor/expected-type mismatch: CAST(CAST(<json> AS jsonb) AS <type>).
// This is not an error — it lets callers pass anything Postgres itself can
// cast from jsonb, e.g. a numeric-looking string into a numeric column.
func castThroughJSONB(raw json.RawMessage, expectedType metadata.Type) sqlast.Expression {
	asJSONB := sqlast.CastExpr(sqlast.ValueExpr(sqlast.JSONValue(raw)), sqlast.NewScalarTypeName("jsonb"))
	return sqlast.CastExpr(asJSONB, scalarTypeNameFor(expectedType))
}

// translateJSONArray builds
// (SELECT array_agg(<populateOrCast(e.element, elem)>) FROM jsonb_array_elements(<json>) AS e(element)).
func translateJSONArray(state *State, raw json.RawMessage, elem metadata.Type) sqlast.Expression {
	return jsonbArrayAgg(state, sqlast.ValueExpr(sqlast.JSONValue(raw)), elem)
}

// jsonbArrayAgg is the shared array-projection core used both for a literal
// JSON array value and for a variable/column expression already holding a
// jsonb array: (SELECT array_agg(populateOrCast(e.element, elem)) FROM
// jsonb_array_elements(<jsonbExpr>) AS e(element)).
func jsonbArrayAgg(state *State, jsonbExpr sqlast.Expression, elem metadata.Type) sqlast.Expression {
	alias := state.MakeArrayTableAlias("array")
	ref := sqlast.AliasedTable(alias)
	elementCol := sqlast.ColumnRefExpr(sqlast.TableColumn(ref, "element"))

	sel := &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{
			Alias: sqlast.NewColumnAlias("agg"),
			Expr:  sqlast.FunctionCallExpr("array_agg", populateOrCast(elementCol, elem)),
		}),
		From:  &sqlast.From{Kind: sqlast.FromJsonbArrayElements, Expr: jsonbExpr, Alias: alias, Column: sqlast.NewColumnAlias("element")},
		Where: sqlast.TrueExpr(),
	}
	return sqlast.CorrelatedSubSelectExpr(sel)
}

// translateJSONObject builds jsonb_populate_record(CAST(NULL AS t), <json>).
func translateJSONObject(raw json.RawMessage, expectedType metadata.Type) sqlast.Expression {
	nullOfType := sqlast.CastExpr(sqlast.ValueExpr(sqlast.NullValue()), scalarTypeNameFor(expectedType))
	jsonbValue := sqlast.CastExpr(sqlast.ValueExpr(sqlast.JSONValue(raw)), sqlast.NewScalarTypeName("jsonb"))
	return sqlast.FunctionCallExpr("jsonb_populate_record", nullOfType, jsonbValue)
}

// populateOrCast projects one already-in-scope jsonb column expression
// (typically a TableColumn reference, not a literal) at the given type: a
// composite element is populated via jsonb_populate_record, a scalar element
// is simply cast.
func populateOrCast(jsonbExpr sqlast.Expression, t metadata.Type) sqlast.Expression {
	switch t.Kind {
	case metadata.TypeComposite:
		nullOfType := sqlast.CastExpr(sqlast.ValueExpr(sqlast.NullValue()), scalarTypeNameFor(t))
		return sqlast.FunctionCallExpr("jsonb_populate_record", nullOfType, jsonbExpr)
	default:
		return sqlast.CastExpr(jsonbExpr, scalarTypeNameFor(t))
	}
}

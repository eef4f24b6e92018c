package translate

import (
	"encoding/json"
	"testing"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envWithArtistAndOperators() (*Env, RootAndCurrentTables) {
	table := artistTable()
	m := &metadata.Metadata{
		Tables: map[string]metadata.TableInfo{"Artist": table},
		ComparisonOperators: map[string][]metadata.ComparisonOperator{
			"int4": {
				{Name: "_eq", Kind: metadata.OperatorEqual, ArgumentType: metadata.ScalarTypeOf("int4")},
				{Name: "_in", Kind: metadata.OperatorIn, ArgumentType: metadata.ArrayTypeOf(metadata.ScalarTypeOf("int4"))},
			},
			"text": {
				{Name: "_like", Kind: metadata.OperatorCustom, Operator: "LIKE", ArgumentType: metadata.ScalarTypeOf("text")},
			},
		},
	}
	env := NewEnv(m, nil, nil)
	tableRef := sqlast.DBTable(table.SchemaName, table.TableName)
	scopes := RootAndCurrentTables{
		Root:    TableNameAndReference{Name: "Artist", Reference: tableRef},
		Current: TableNameAndReference{Name: "Artist", Reference: tableRef},
	}
	return env, scopes
}

func TestTranslateExpressionAndOfBinaryComparisons(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	expr := ndc.Expression{
		Kind: ndc.ExprAnd,
		Children: []ndc.Expression{
			{
				Kind:        ndc.ExprBinaryComparisonOperator,
				Column:      &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: "ArtistId"},
				BinOperator: "_eq",
				Value:       &ndc.ComparisonValue{Kind: ndc.ComparisonValueScalar, Value: json.RawMessage(`7`)},
			},
			{
				Kind:   ndc.ExprUnaryComparisonOperator,
				Column: &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: "Name"},
				Operator: ndc.UnaryIsNull,
			},
		},
	}

	out, err := TranslateExpression(env, state, scopes, expr)
	require.NoError(t, err)

	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, `"public"."Artist"."ArtistId" = `)
	assert.Contains(t, sql, `"public"."Artist"."Name" IS NULL`)
	assert.Contains(t, sql, " AND ")
}

func TestTranslateExpressionInOperatorRendersInExpr(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	expr := ndc.Expression{
		Kind:        ndc.ExprBinaryComparisonOperator,
		Column:      &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: "ArtistId"},
		BinOperator: "_in",
		Value:       &ndc.ComparisonValue{Kind: ndc.ComparisonValueScalar, Value: json.RawMessage(`[1, 2, 3]`)},
	}

	out, err := TranslateExpression(env, state, scopes, expr)
	require.NoError(t, err)
	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, "= ANY(ARRAY[")
}

func TestTranslateExpressionCustomOperatorUsesItsOwnOperatorText(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	expr := ndc.Expression{
		Kind:        ndc.ExprBinaryComparisonOperator,
		Column:      &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: "Name"},
		BinOperator: "_like",
		Value:       &ndc.ComparisonValue{Kind: ndc.ComparisonValueScalar, Value: json.RawMessage(`"Que%"`)},
	}

	out, err := TranslateExpression(env, state, scopes, expr)
	require.NoError(t, err)
	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, " LIKE ")
}

func TestTranslateExpressionNotWrapsInner(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	expr := ndc.Expression{
		Kind: ndc.ExprNot,
		Operand: &ndc.Expression{
			Kind:   ndc.ExprUnaryComparisonOperator,
			Column: &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: "Name"},
			Operator: ndc.UnaryIsNull,
		},
	}

	out, err := TranslateExpression(env, state, scopes, expr)
	require.NoError(t, err)
	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, "NOT (")
}

func TestTranslateExpressionRejectsUnknownOperator(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	expr := ndc.Expression{
		Kind:        ndc.ExprBinaryComparisonOperator,
		Column:      &ndc.ComparisonTarget{Kind: ndc.ComparisonTargetColumn, Name: "ArtistId"},
		BinOperator: "_no_such_op",
		Value:       &ndc.ComparisonValue{Kind: ndc.ComparisonValueScalar, Value: json.RawMessage(`7`)},
	}

	_, err := TranslateExpression(env, state, scopes, expr)
	require.Error(t, err)
}

func TestTranslateExpressionExistsUnrelatedJoinsWithTrue(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	expr := ndc.Expression{
		Kind:         ndc.ExprExists,
		InCollection: &ndc.ExistsInCollection{Kind: ndc.ExistsUnrelated, Collection: "Artist"},
	}

	out, err := TranslateExpression(env, state, scopes, expr)
	require.NoError(t, err)
	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, "EXISTS (SELECT")
	assert.Contains(t, sql, `FROM "public"."Artist"`)
}

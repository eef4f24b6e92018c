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

func envWithVariablesTable() *Env {
	m := &metadata.Metadata{}
	varTable := sqlast.AliasedTable(NewState().MakeVariablesTableAlias())
	return NewEnv(m, nil, &varTable)
}

func TestTranslateVariableScalarGoesThroughArrowText(t *testing.T) {
	env := envWithVariablesTable()
	state := NewState()

	expr, err := TranslateVariable(env, state, "artistId", metadata.ScalarTypeOf("int4"))
	require.NoError(t, err)

	sql, params := sqlast.RenderExpression(expr)
	assert.Contains(t, sql, `"variables" ->> `)
	assert.Contains(t, sql, "AS int4)")
	require.Len(t, params, 1)
	assert.Equal(t, `"artistId"`, string(params[0].Value))
}

func TestTranslateVariableArrayAggregatesViaJsonbArrowElements(t *testing.T) {
	env := envWithVariablesTable()
	state := NewState()
	arrType := metadata.ArrayTypeOf(metadata.ScalarTypeOf("int4"))

	expr, err := TranslateVariable(env, state, "ids", arrType)
	require.NoError(t, err)

	sql, _ := sqlast.RenderExpression(expr)
	assert.Contains(t, sql, `"variables" -> `)
	assert.Contains(t, sql, "array_agg(")
}

func TestTranslateVariableWithoutVariablesTableErrors(t *testing.T) {
	m := &metadata.Metadata{}
	env := NewEnv(m, nil, nil)
	state := NewState()

	_, err := TranslateVariable(env, state, "artistId", metadata.ScalarTypeOf("int4"))
	require.Error(t, err)
}

func TestTranslateArgumentValueDispatchesOnKind(t *testing.T) {
	env := envWithVariablesTable()
	state := NewState()

	literal, err := TranslateArgumentValue(env, state, ndc.Argument{Kind: ndc.ArgumentLiteral, Value: json.RawMessage(`5`)}, metadata.ScalarTypeOf("int4"))
	require.NoError(t, err)
	sql, _ := sqlast.RenderExpression(literal)
	assert.Contains(t, sql, "CAST($1 AS int4)")

	variable, err := TranslateArgumentValue(env, state, ndc.Argument{Kind: ndc.ArgumentVariable, Name: "x"}, metadata.ScalarTypeOf("int4"))
	require.NoError(t, err)
	sql, _ = sqlast.RenderExpression(variable)
	assert.Contains(t, sql, `"variables" ->> `)
}

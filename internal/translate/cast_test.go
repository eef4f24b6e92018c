package translate

import (
	"testing"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
	"github.com/stretchr/testify/assert"
)

func envWithRepresentations(reps map[string]metadata.TypeRepresentation) *Env {
	m := &metadata.Metadata{ScalarTypeRepresentations: reps}
	return NewEnv(m, nil, nil)
}

func TestApplyTypeRepresentationCastLeavesPlainScalarUnchanged(t *testing.T) {
	env := envWithRepresentations(map[string]metadata.TypeRepresentation{
		"int4": metadata.NewTypeRepresentation(metadata.RepInt32),
	})
	state := NewState()
	col := sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.DBTable("public", "Track"), "Milliseconds"))

	out := ApplyTypeRepresentationCast(env, state, col, metadata.ScalarTypeOf("int4"))

	sql, _ := sqlast.RenderExpression(out)
	assert.NotContains(t, sql, "CAST")
}

func TestApplyTypeRepresentationCastWrapsInt64AsStringInTextCast(t *testing.T) {
	env := envWithRepresentations(map[string]metadata.TypeRepresentation{
		"int8": metadata.NewTypeRepresentation(metadata.RepInt64AsString),
	})
	state := NewState()
	col := sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.DBTable("public", "Invoice"), "Total"))

	out := ApplyTypeRepresentationCast(env, state, col, metadata.ScalarTypeOf("int8"))

	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, `CAST("public"."Invoice"."Total" AS text)`)
}

func TestApplyTypeRepresentationCastWrapsBigDecimalAsStringInTextCast(t *testing.T) {
	env := envWithRepresentations(map[string]metadata.TypeRepresentation{
		"numeric": metadata.NewTypeRepresentation(metadata.RepBigDecimalAsString),
	})
	state := NewState()
	col := sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.DBTable("public", "Invoice"), "Total"))

	out := ApplyTypeRepresentationCast(env, state, col, metadata.ScalarTypeOf("numeric"))

	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, "AS text)")
}

func TestApplyTypeRepresentationCastDefaultsToStringRepresentationWhenUnconfigured(t *testing.T) {
	env := envWithRepresentations(map[string]metadata.TypeRepresentation{})
	state := NewState()
	col := sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.DBTable("public", "Track"), "Name"))

	out := ApplyTypeRepresentationCast(env, state, col, metadata.ScalarTypeOf("text"))

	sql, _ := sqlast.RenderExpression(out)
	assert.NotContains(t, sql, "CAST")
}

func TestApplyTypeRepresentationCastArrayElementwiseTextCast(t *testing.T) {
	env := envWithRepresentations(map[string]metadata.TypeRepresentation{
		"int8": metadata.NewTypeRepresentation(metadata.RepInt64AsString),
	})
	state := NewState()
	col := sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.DBTable("public", "Invoice"), "Totals"))
	arrType := metadata.ArrayTypeOf(metadata.ScalarTypeOf("int8"))

	out := ApplyTypeRepresentationCast(env, state, col, arrType)

	sql, _ := sqlast.RenderExpression(out)
	assert.Contains(t, sql, "unnest(")
	assert.Contains(t, sql, "array_agg(CAST(")
}

func TestApplyTypeRepresentationCastArrayOfPlainScalarUnchanged(t *testing.T) {
	env := envWithRepresentations(map[string]metadata.TypeRepresentation{
		"int4": metadata.NewTypeRepresentation(metadata.RepInt32),
	})
	state := NewState()
	col := sqlast.ColumnRefExpr(sqlast.TableColumn(sqlast.DBTable("public", "Track"), "Tags"))
	arrType := metadata.ArrayTypeOf(metadata.ScalarTypeOf("int4"))

	out := ApplyTypeRepresentationCast(env, state, col, arrType)

	sql, _ := sqlast.RenderExpression(out)
	assert.NotContains(t, sql, "unnest(")
}

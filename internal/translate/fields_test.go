package translate

import (
	"testing"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFieldsPlainColumnProjection(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	items, joins, err := TranslateFields(env, state, scopes, scopes.Current, map[string]ndc.Field{
		"artistName": {Kind: ndc.FieldColumn, Column: "Name"},
	})
	require.NoError(t, err)
	assert.Empty(t, joins)
	require.Len(t, items, 1)

	sql, _ := sqlast.RenderExpression(items[0].Expr)
	assert.Contains(t, sql, `"public"."Artist"."Name"`)
}

func TestTranslateFieldsRejectsUnknownColumn(t *testing.T) {
	env, scopes := envWithArtistAndOperators()
	state := NewState()

	_, _, err := TranslateFields(env, state, scopes, scopes.Current, map[string]ndc.Field{
		"x": {Kind: ndc.FieldColumn, Column: "NoSuchColumn"},
	})
	require.Error(t, err)
}

func TestTranslateFieldsRelationshipProducesLateralJoin(t *testing.T) {
	table := artistTable()
	albumTable := metadata.TableInfo{
		SchemaName: "public",
		TableName:  "Album",
		Columns: map[string]metadata.ColumnInfo{
			"Title": {Name: "Title", Type: metadata.ScalarTypeOf("text")},
		},
	}
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": table, "Album": albumTable}}
	env := NewEnv(m, map[string]ndc.Relationship{
		"albums": {TargetCollection: "Album", RelationshipType: ndc.RelationshipArray, ColumnMapping: map[string]string{"ArtistId": "ArtistId"}},
	}, nil)
	tableRef := sqlast.DBTable("public", "Artist")
	scopes := RootAndCurrentTables{
		Root:    TableNameAndReference{Name: "Artist", Reference: tableRef},
		Current: TableNameAndReference{Name: "Artist", Reference: tableRef},
	}
	state := NewState()

	items, joins, err := TranslateFields(env, state, scopes, scopes.Current, map[string]ndc.Field{
		"albums": {
			Kind:         ndc.FieldRelationship,
			Relationship: "albums",
			Query:        &ndc.Query{Fields: map[string]ndc.Field{"title": {Kind: ndc.FieldColumn, Column: "Title"}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, joins, 1)

	sql, _ := sqlast.RenderExpression(items[0].Expr)
	assert.Contains(t, sql, `"collected"`)
}

func TestTranslateFieldsNestedCompositeObjectRequiresCompositeColumnType(t *testing.T) {
	table := artistTable()
	env := NewEnv(&metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": table}}, nil, nil)
	tableRef := sqlast.DBTable("public", "Artist")
	scopes := RootAndCurrentTables{
		Root:    TableNameAndReference{Name: "Artist", Reference: tableRef},
		Current: TableNameAndReference{Name: "Artist", Reference: tableRef},
	}
	state := NewState()

	// Name is a plain scalar column, so requesting nested object fields
	// under it must fail rather than silently ignoring the nested shape.
	_, _, err := TranslateFields(env, state, scopes, scopes.Current, map[string]ndc.Field{
		"name": {
			Kind:   ndc.FieldColumn,
			Column: "Name",
			Fields: &ndc.NestedField{Kind: ndc.NestedObject, Fields: map[string]ndc.Field{}},
		},
	})
	require.Error(t, err)
}

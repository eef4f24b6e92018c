package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfigJSON() []byte {
	return []byte(`{
		"version": "3",
		"tables": {
			"Artist": {
				"schemaName": "public",
				"tableName": "Artist",
				"columns": {
					"ArtistId": {
						"name": "ArtistId",
						"type": {"Kind": 0, "ScalarType": "int4"},
						"nullable": "nonNullable",
						"hasDefault": "hasDefault",
						"isIdentity": "byDefault",
						"isGenerated": "notGenerated"
					},
					"Name": {
						"name": "Name",
						"type": {"Kind": 0, "ScalarType": "text"},
						"nullable": "nullable",
						"hasDefault": "noDefault",
						"isIdentity": "notIdentity",
						"isGenerated": "notGenerated"
					}
				},
				"uniquenessConstraints": [],
				"foreignRelations": {}
			}
		},
		"nativeQueries": {}
	}`)
}

func TestLoadUpgradesToCurrentVersion(t *testing.T) {
	m, err := Load(sampleConfigJSON())
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, m.Version)
	require.NotNil(t, m.MutationsVersion)
	assert.Equal(t, MutationsExperimental, *m.MutationsVersion)
	assert.NotNil(t, m.ScalarTypeRepresentations)
}

func TestLoadRejectsMissingRequiredField(t *testing.T) {
	_, err := Load([]byte(`{"version": "3"}`))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	_, err := Load([]byte(`{"version": "999", "tables": {}}`))
	assert.Error(t, err)
}

func TestValidateNativeQueryCatchesUndeclaredArgument(t *testing.T) {
	nq := NativeQuery{
		Sql:     "select * from widgets where id = {{widget_id}}",
		Columns: map[string]ColumnInfo{},
	}
	err := ValidateNativeQuery("get_widget", nq)
	assert.Error(t, err)
}

func TestValidateNativeQueryCatchesUnusedArgument(t *testing.T) {
	nq := NativeQuery{
		Sql:     "select * from widgets",
		Columns: map[string]ColumnInfo{},
		Arguments: map[string]ColumnInfo{
			"widget_id": {Name: "widget_id", Type: ScalarTypeOf("int4")},
		},
	}
	err := ValidateNativeQuery("get_widget", nq)
	assert.Error(t, err)
}

func TestValidateNativeQueryAcceptsValidTemplate(t *testing.T) {
	nq := NativeQuery{
		Sql:     "select * from widgets where id = {{widget_id}}",
		Columns: map[string]ColumnInfo{},
		Arguments: map[string]ColumnInfo{
			"widget_id": {Name: "widget_id", Type: ScalarTypeOf("int4")},
		},
	}
	assert.NoError(t, ValidateNativeQuery("get_widget", nq))
}

func TestTypeRepresentationNeedsTextCast(t *testing.T) {
	assert.True(t, NewTypeRepresentation(RepInt64AsString).NeedsTextCast())
	assert.True(t, NewTypeRepresentation(RepBigDecimalAsString).NeedsTextCast())
	assert.False(t, NewTypeRepresentation(RepInt64).NeedsTextCast())
}

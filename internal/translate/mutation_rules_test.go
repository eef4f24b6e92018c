package translate

import (
	"encoding/json"
	"testing"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artistTable() metadata.TableInfo {
	return metadata.TableInfo{
		SchemaName: "public",
		TableName:  "Artist",
		Columns: map[string]metadata.ColumnInfo{
			"ArtistId": {
				Name:       "ArtistId",
				Type:       metadata.ScalarTypeOf("int4"),
				Nullable:   metadata.NullableNo,
				HasDefault: metadata.HasDefaultNo,
				IsIdentity: metadata.IdentityByDefault,
			},
			"Name": {
				Name:       "Name",
				Type:       metadata.ScalarTypeOf("text"),
				Nullable:   metadata.NullableYes,
				HasDefault: metadata.HasDefaultNo,
				IsIdentity: metadata.IdentityNotIdentity,
			},
			"SearchVector": {
				Name:        "SearchVector",
				Type:        metadata.ScalarTypeOf("tsvector"),
				Nullable:    metadata.NullableYes,
				HasDefault:  metadata.HasDefaultNo,
				IsIdentity:  metadata.IdentityNotIdentity,
				IsGenerated: metadata.GeneratedStored,
			},
			"Rank": {
				Name:       "Rank",
				Type:       metadata.ScalarTypeOf("int4"),
				Nullable:   metadata.NullableNo,
				HasDefault: metadata.HasDefaultNo,
				IsIdentity: metadata.IdentityNotIdentity,
			},
		},
		Uniqueness: []metadata.UniquenessConstraint{
			{Name: "Artist_pkey", UniqueColumns: []string{"ArtistId"}},
		},
	}
}

func TestPlanInsertColumnsFillsOptionalAndRequiresMandatory(t *testing.T) {
	table := artistTable()

	objects := []map[string]json.RawMessage{
		{"Name": json.RawMessage(`"Queen"`), "Rank": json.RawMessage(`1`)},
	}
	plan, err := planInsertColumns(table, objects)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Rank"}, plan.Columns)
}

func TestPlanInsertColumnsMissingRequiredColumn(t *testing.T) {
	table := artistTable()

	objects := []map[string]json.RawMessage{
		{"Name": json.RawMessage(`"Queen"`)},
	}
	_, err := planInsertColumns(table, objects)
	require.Error(t, err)
	terr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, MissingColumnInInsert, terr.Kind)
}

func TestPlanInsertColumnsRejectsGeneratedColumn(t *testing.T) {
	table := artistTable()

	objects := []map[string]json.RawMessage{
		{"Name": json.RawMessage(`"Queen"`), "Rank": json.RawMessage(`1`), "SearchVector": json.RawMessage(`"queen"`)},
	}
	_, err := planInsertColumns(table, objects)
	require.Error(t, err)
	terr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ColumnIsGenerated, terr.Kind)
}

func TestPlanInsertColumnsRejectsIdentityAlways(t *testing.T) {
	table := artistTable()
	col := table.Columns["ArtistId"]
	col.IsIdentity = metadata.IdentityAlways
	table.Columns["ArtistId"] = col

	objects := []map[string]json.RawMessage{
		{"ArtistId": json.RawMessage(`1`), "Name": json.RawMessage(`"Queen"`), "Rank": json.RawMessage(`1`)},
	}
	_, err := planInsertColumns(table, objects)
	require.Error(t, err)
	terr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ColumnIsIdentityAlways, terr.Kind)
}

func TestPlanInsertColumnsUnionAcrossBatch(t *testing.T) {
	table := artistTable()

	objects := []map[string]json.RawMessage{
		{"Name": json.RawMessage(`"Queen"`), "Rank": json.RawMessage(`1`)},
		{"Name": json.RawMessage(`"ABBA"`), "Rank": json.RawMessage(`2`), "ArtistId": json.RawMessage(`9`)},
	}
	plan, err := planInsertColumns(table, objects)
	require.NoError(t, err)
	assert.Equal(t, []string{"ArtistId", "Name", "Rank"}, plan.Columns)
}

func TestPlanSetColumnsRejectsGeneratedAndIdentityAlways(t *testing.T) {
	table := artistTable()
	col := table.Columns["ArtistId"]
	col.IsIdentity = metadata.IdentityAlways
	table.Columns["ArtistId"] = col

	err := planSetColumns(table, map[string]json.RawMessage{"SearchVector": json.RawMessage(`"x"`)})
	require.Error(t, err)
	assert.Equal(t, ColumnIsGenerated, err.(*Error).Kind)

	err = planSetColumns(table, map[string]json.RawMessage{"ArtistId": json.RawMessage(`1`)})
	require.Error(t, err)
	assert.Equal(t, ColumnIsIdentityAlways, err.(*Error).Kind)
}

func TestPlanSetColumnsAllowsOrdinaryColumn(t *testing.T) {
	table := artistTable()
	err := planSetColumns(table, map[string]json.RawMessage{"Name": json.RawMessage(`"Queen"`)})
	require.NoError(t, err)
}

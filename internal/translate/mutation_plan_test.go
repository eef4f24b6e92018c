package translate

import (
	"encoding/json"
	"testing"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMutationPlanWrapsBeginAndCommit(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	request := ndc.MutationRequest{
		Operations: []ndc.MutationOperation{
			{
				Name: "experimental_insert_Artist",
				Arguments: map[string]json.RawMessage{
					"_objects": json.RawMessage(`[{"Name": "Queen", "Rank": 1}]`),
				},
			},
		},
	}

	plan, err := BuildMutationPlan(m, request, "")
	require.NoError(t, err)

	require.Len(t, plan.Pre, 1)
	assert.Contains(t, plan.Pre[0].Sql, "BEGIN ISOLATION LEVEL READ COMMITTED")
	require.Len(t, plan.Query, 1)
	assert.Contains(t, plan.Query[0].Sql, `INSERT INTO "public"."Artist"`)
	require.Len(t, plan.Post, 1)
	assert.Contains(t, plan.Post[0].Sql, "COMMIT")
}

func TestBuildMutationPlanHonorsConfiguredIsolationLevel(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	request := ndc.MutationRequest{
		Operations: []ndc.MutationOperation{
			{
				Name: "experimental_delete_Artist_by_ArtistId",
				Arguments: map[string]json.RawMessage{
					"ArtistId": json.RawMessage(`7`),
				},
			},
		},
	}

	plan, err := BuildMutationPlan(m, request, "SERIALIZABLE")
	require.NoError(t, err)
	assert.Contains(t, plan.Pre[0].Sql, "BEGIN ISOLATION LEVEL SERIALIZABLE")
	assert.Contains(t, plan.Query[0].Sql, `DELETE FROM "public"."Artist"`)
}

func TestBuildMutationPlanUpdateByKeyReadsSet(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	request := ndc.MutationRequest{
		Operations: []ndc.MutationOperation{
			{
				Name: "experimental_update_Artist_by_ArtistId",
				Arguments: map[string]json.RawMessage{
					"ArtistId": json.RawMessage(`7`),
					"_set":     json.RawMessage(`{"Name": "Queen"}`),
				},
			},
		},
	}

	plan, err := BuildMutationPlan(m, request, "")
	require.NoError(t, err)
	assert.Contains(t, plan.Query[0].Sql, `UPDATE "public"."Artist" SET "Name" = `)
}

func TestBuildMutationPlanUnknownProcedure(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	request := ndc.MutationRequest{
		Operations: []ndc.MutationOperation{
			{Name: "experimental_insert_NoSuchTable", Arguments: map[string]json.RawMessage{}},
		},
	}

	_, err := BuildMutationPlan(m, request, "")
	require.Error(t, err)
	assert.Equal(t, ProcedureNotFound, err.(*Error).Kind)
}

func TestBuildMutationPlanMissingRequiredInsertArgument(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	request := ndc.MutationRequest{
		Operations: []ndc.MutationOperation{
			{
				Name: "experimental_insert_Artist",
				Arguments: map[string]json.RawMessage{
					"_objects": json.RawMessage(`[{"Name": "Queen"}]`),
				},
			},
		},
	}

	_, err := BuildMutationPlan(m, request, "")
	require.Error(t, err)
	assert.Equal(t, MissingColumnInInsert, err.(*Error).Kind)
}

package translate

import (
	"testing"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMutationProceduresDefaultsToExperimentalFamily(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	procs := buildMutationProcedures(m, metadata.MutationsExperimental)

	insert, ok := procs["experimental_insert_Artist"]
	require.True(t, ok)
	assert.Equal(t, procedureInsert, insert.Kind)

	update, ok := procs["experimental_update_Artist_by_ArtistId"]
	require.True(t, ok)
	assert.Equal(t, procedureUpdateByKey, update.Kind)
	assert.Equal(t, "ArtistId", update.ByColumn)

	del, ok := procs["experimental_delete_Artist_by_ArtistId"]
	require.True(t, ok)
	assert.Equal(t, procedureDeleteByKey, del.Kind)
	assert.Equal(t, "ArtistId", del.ByColumn)

	// A catalog with no MutationsVersion configured exposes only the
	// experimental family, never v1 alongside it.
	for name := range procs {
		assert.NotContains(t, name, "v1_")
	}
}

func TestBuildMutationProceduresV1FamilyExcludesExperimental(t *testing.T) {
	version := metadata.MutationsV1
	table := artistTable()
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": table}, MutationsVersion: &version}
	procs := buildMutationProcedures(m, version)

	insert, ok := procs["v1_insert_Artist"]
	require.True(t, ok)
	assert.Equal(t, procedureInsert, insert.Kind)

	update, ok := procs["v1_update_Artist_by_ArtistId"]
	require.True(t, ok)
	assert.Equal(t, procedureUpdateByKey, update.Kind)

	del, ok := procs["v1_delete_Artist_by_ArtistId"]
	require.True(t, ok)
	assert.Equal(t, procedureDeleteByKey, del.Kind)

	for name := range procs {
		assert.NotContains(t, name, "experimental_")
	}
}

func TestBuildMutationProceduresSkipsCompoundUniqueness(t *testing.T) {
	table := artistTable()
	table.Uniqueness = append(table.Uniqueness, metadata.UniquenessConstraint{
		Name:          "Artist_name_rank_key",
		UniqueColumns: []string{"Name", "Rank"},
	})
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": table}}
	procs := buildMutationProcedures(m, metadata.MutationsExperimental)

	for name := range procs {
		assert.NotContains(t, name, "_by_Name_Rank")
	}
}

func TestLookupMutationProcedureNotFound(t *testing.T) {
	m := &metadata.Metadata{Tables: map[string]metadata.TableInfo{"Artist": artistTable()}}
	env := NewEnv(m, nil, nil)
	_, err := lookupMutationProcedure(env, "experimental_insert_NoSuchTable")
	require.Error(t, err)
	assert.Equal(t, ProcedureNotFound, err.(*Error).Kind)
}

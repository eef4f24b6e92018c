package translate

import "github.com/hasura/ndc-postgres-go/internal/metadata"

// mutationProcedureKind discriminates the three generated procedure
// families (spec §4.9).
type mutationProcedureKind int

const (
	procedureInsert mutationProcedureKind = iota
	procedureUpdateByKey
	procedureDeleteByKey
)

// mutationProcedure is one entry of the procedure registry every table
// contributes at schema time: an insert, and one update-by-key/delete-by-key
// pair per non-compound uniqueness constraint.
type mutationProcedure struct {
	Kind           mutationProcedureKind
	CollectionName string
	Table          metadata.TableInfo
	ByColumn       string
}

// buildMutationProcedures mirrors the schema-generation step that names
// experimental_insert_<t>, experimental_update_<t>_by_<col>, and
// experimental_delete_<t>_by_<col> for every table in the catalog — or
// their v1_ siblings, never both: spec §4.12 is explicit that a deployment
// exposes exactly one procedure-name family, selected by the catalog's
// configured MutationsVersion.
func buildMutationProcedures(m *metadata.Metadata, version metadata.MutationsVersion) map[string]mutationProcedure {
	prefix := "experimental_"
	if version == metadata.MutationsV1 {
		prefix = "v1_"
	}

	procs := make(map[string]mutationProcedure)
	for name, table := range m.Tables {
		procs[prefix+"insert_"+name] = mutationProcedure{Kind: procedureInsert, CollectionName: name, Table: table}

		for _, uc := range table.Uniqueness {
			if len(uc.UniqueColumns) != 1 {
				continue
			}
			col := uc.UniqueColumns[0]

			procs[prefix+"update_"+name+"_by_"+col] = mutationProcedure{Kind: procedureUpdateByKey, CollectionName: name, Table: table, ByColumn: col}
			procs[prefix+"delete_"+name+"_by_"+col] = mutationProcedure{Kind: procedureDeleteByKey, CollectionName: name, Table: table, ByColumn: col}
		}
	}
	return procs
}

// lookupMutationProcedure resolves a MutationRequest operation name against
// the registry built for env's configured MutationsVersion, so a deployment
// pinned to v1 never matches an experimental_ name or vice versa.
func lookupMutationProcedure(env *Env, name string) (mutationProcedure, error) {
	procs := buildMutationProcedures(env.metadata, env.MutationsVersion())
	proc, ok := procs[name]
	if !ok {
		return mutationProcedure{}, errProcedureNotFound(name)
	}
	return proc, nil
}

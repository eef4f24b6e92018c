package translate

import (
	"encoding/json"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// defaultIsolationLevel is the fallback when the host doesn't configure one
// explicitly; Postgres' own default.
const defaultIsolationLevel = "READ COMMITTED"

// BuildMutationPlan is the top-level entry point for POST /mutation. Every
// operation is translated independently against its own State (operations
// in a batch share no aliasing or CTE namespace), rendered to its own
// statement, and the whole batch is wrapped in the BEGIN/COMMIT markers
// spec §4.9 describes; the runtime executes them and asserts CHECK_CONSTRAINT
// on every returned row before the transaction commits.
func BuildMutationPlan(m *metadata.Metadata, request ndc.MutationRequest, isolationLevel string) (*ndc.ExecutionPlan, error) {
	if isolationLevel == "" {
		isolationLevel = defaultIsolationLevel
	}

	statements := make([]ndc.Statement, 0, len(request.Operations))
	for _, op := range request.Operations {
		stmt, err := translateMutationOperation(m, request.CollectionRelationships, op)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	return &ndc.ExecutionPlan{
		Pre:   []ndc.Statement{ndc.NewStatement("BEGIN ISOLATION LEVEL "+isolationLevel, nil)},
		Query: statements,
		Post:  []ndc.Statement{ndc.NewStatement("COMMIT", nil)},
	}, nil
}

func translateMutationOperation(m *metadata.Metadata, relationships map[string]ndc.Relationship, op ndc.MutationOperation) (ndc.Statement, error) {
	state := NewState()
	env := NewEnv(m, relationships, nil)

	proc, err := lookupMutationProcedure(env, op.Name)
	if err != nil {
		return ndc.Statement{}, err
	}

	var stmt sqlast.Statement
	switch proc.Kind {
	case procedureInsert:
		insert, err := translateInsertOperation(env, state, proc, op)
		if err != nil {
			return ndc.Statement{}, err
		}
		stmt = sqlast.Statement{Kind: sqlast.StmtInsert, Insert: insert}

	case procedureUpdateByKey:
		update, err := translateUpdateOperation(env, state, proc, op)
		if err != nil {
			return ndc.Statement{}, err
		}
		stmt = sqlast.Statement{Kind: sqlast.StmtUpdate, Update: update}

	default: // procedureDeleteByKey
		del, err := translateDeleteOperation(env, state, proc, op)
		if err != nil {
			return ndc.Statement{}, err
		}
		stmt = sqlast.Statement{Kind: sqlast.StmtDelete, Delete: del}
	}

	ctes, err := MaterializeNativeQueries(env, state)
	if err != nil {
		return ndc.Statement{}, err
	}
	stmt.With = ctes

	sql, params := sqlast.Render(stmt)
	return ndc.NewStatement(sql, params), nil
}

func translateInsertOperation(env *Env, state *State, proc mutationProcedure, op ndc.MutationOperation) (*sqlast.Insert, error) {
	objects, err := extractInsertObjects(proc, op.Arguments)
	if err != nil {
		return nil, err
	}
	constraint, err := extractOptionalExpression(op.Arguments, "constraint")
	if err != nil {
		return nil, err
	}
	return TranslateInsert(env, state, proc.Table, objects, constraint)
}

func translateUpdateOperation(env *Env, state *State, proc mutationProcedure, op ndc.MutationOperation) (*sqlast.Update, error) {
	keyValue, ok := op.Arguments[proc.ByColumn]
	if !ok {
		return nil, errArgumentNotFound(proc.ByColumn)
	}
	setRaw, ok := op.Arguments["_set"]
	if !ok {
		return nil, errArgumentNotFound("_set")
	}
	var set map[string]json.RawMessage
	if err := json.Unmarshal(setRaw, &set); err != nil {
		return nil, errUnexpectedStructure("_set argument must be an object")
	}
	preCheck, err := extractOptionalExpression(op.Arguments, "pre_check")
	if err != nil {
		return nil, err
	}
	postCheck, err := extractOptionalExpression(op.Arguments, "post_check")
	if err != nil {
		return nil, err
	}
	return TranslateUpdateByKey(env, state, proc.Table, proc.ByColumn, keyValue, set, preCheck, postCheck)
}

func translateDeleteOperation(env *Env, state *State, proc mutationProcedure, op ndc.MutationOperation) (*sqlast.Delete, error) {
	keyValue, ok := op.Arguments[proc.ByColumn]
	if !ok {
		return nil, errArgumentNotFound(proc.ByColumn)
	}
	check, err := extractOptionalExpression(op.Arguments, "check")
	if err != nil {
		return nil, err
	}
	return TranslateDeleteByKey(env, state, proc.Table, proc.ByColumn, keyValue, check)
}

// extractInsertObjects reads `_objects` (experimental_insert_*, an array)
// or `_object` (v1_insert_*, a single object) out of the operation's
// arguments, normalizing both into a batch of one-or-more objects.
func extractInsertObjects(proc mutationProcedure, arguments map[string]json.RawMessage) ([]map[string]json.RawMessage, error) {
	if raw, ok := arguments["_objects"]; ok {
		var objects []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &objects); err != nil {
			return nil, errUnexpectedStructure("_objects argument must be an array of objects")
		}
		return objects, nil
	}
	if raw, ok := arguments["_object"]; ok {
		var object map[string]json.RawMessage
		if err := json.Unmarshal(raw, &object); err != nil {
			return nil, errUnexpectedStructure("_object argument must be an object")
		}
		return []map[string]json.RawMessage{object}, nil
	}
	return nil, errArgumentNotFound("_objects")
}

func extractOptionalExpression(arguments map[string]json.RawMessage, name string) (*ndc.Expression, error) {
	raw, ok := arguments[name]
	if !ok {
		return nil, nil
	}
	var expr ndc.Expression
	if err := json.Unmarshal(raw, &expr); err != nil {
		return nil, errUnexpectedStructure(name + " argument must be a predicate expression")
	}
	return &expr, nil
}

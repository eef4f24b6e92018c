package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
	"github.com/hasura/ndc-postgres-go/internal/translate"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// statement is one rendered SQL text paired with Go-typed bind arguments,
// the shape pgxpool.Conn.Query/Exec accepts directly. Converting
// ndc.Statement.Params (JSON bytes, sqlast's wire shape for a value the
// translator never needed to interpret) into native Go values is this
// package's job, not the pure translator's.
type statement struct {
	SQL  string
	Args []interface{}
}

// toStatement decodes a translator-produced ndc.Statement's JSON-encoded
// parameters into native Go values pgx can bind positionally. Every
// parameter the translator emits was built from sqlast.ValueExpr, so it is
// always valid JSON (null/bool/number/string/array/object); json.Unmarshal
// into `any` recovers the value pgx's default type mapping then encodes
// back out to the wire format Postgres expects.
func toStatement(s ndc.Statement) (statement, error) {
	args := make([]interface{}, len(s.Params))
	for i, p := range s.Params {
		var v interface{}
		if err := json.Unmarshal(p.Value, &v); err != nil {
			return statement{}, fmt.Errorf("server: decoding parameter %d: %w", i+1, err)
		}
		args[i] = v
	}
	return statement{SQL: s.Sql, Args: args}, nil
}

// toStatements converts a whole ExecutionPlan phase (Pre or Post) in order.
func toStatements(phase []ndc.Statement) ([]statement, error) {
	out := make([]statement, len(phase))
	for i, s := range phase {
		stmt, err := toStatement(s)
		if err != nil {
			return nil, err
		}
		out[i] = stmt
	}
	return out, nil
}

// bindVariablesTable replaces the renderer's `%variables_table` placeholder
// (see sqlast.FromVariables) with a real set-returning expression over a
// freshly appended JSON parameter, and reports whether a substitution was
// made. The pure translator only knows it needs *a* variables table; only
// the runtime, which actually has the request's Variables payload, can
// supply it.
func bindVariablesTable(sql string, params []sqlast.Param, variables []map[string]json.RawMessage) (string, []sqlast.Param, error) {
	if !strings.Contains(sql, "%variables_table") {
		return sql, params, nil
	}
	encoded, err := json.Marshal(variables)
	if err != nil {
		return "", nil, fmt.Errorf("server: encoding variables: %w", err)
	}
	index := len(params) + 1
	replaced := strings.Replace(sql, "%variables_table", fmt.Sprintf("jsonb_array_elements($%d::jsonb)", index), 1)
	withParam := append(append([]sqlast.Param{}, params...), sqlast.Param{Kind: sqlast.ParamValue, Value: encoded})
	return replaced, withParam, nil
}

// resolveQueryPlan returns a cached ExecutionPlan for request's structural
// shape when cache is non-nil and has one, translating and populating the
// cache on a miss. Plans never carry bound values (see queryShapeKey), so
// the same cached plan is reused verbatim across requests that only differ
// in predicate literals or variable bindings.
func resolveQueryPlan(cache *planCache, m *metadata.Metadata, request ndc.QueryRequest) (*ndc.ExecutionPlan, error) {
	if cache == nil || !cache.enabled() {
		return translate.BuildQueryPlan(m, request)
	}
	key, err := queryShapeKey(request)
	if err != nil {
		return translate.BuildQueryPlan(m, request)
	}
	if plan, ok := cache.get(key); ok {
		return plan, nil
	}
	plan, err := translate.BuildQueryPlan(m, request)
	if err != nil {
		return nil, err
	}
	cache.put(key, plan)
	return plan, nil
}

// ExecuteQuery runs the full POST /query path: translate (or reuse a cached
// plan), bind variables, execute, and reshape rows back into the NDC
// response array (one entry per variable binding, or a single entry when
// the request carries none).
func ExecuteQuery(ctx context.Context, pool *pgxpool.Pool, cache *planCache, m *metadata.Metadata, request ndc.QueryRequest) (json.RawMessage, error) {
	plan, err := resolveQueryPlan(cache, m, request)
	if err != nil {
		return nil, err
	}
	if len(plan.Query) != 1 {
		return nil, fmt.Errorf("server: query plan produced %d statements, expected 1", len(plan.Query))
	}

	sql, params, err := bindVariablesTable(plan.Query[0].Sql, plan.Query[0].Params, request.Variables)
	if err != nil {
		return nil, err
	}
	stmt, err := toStatement(ndc.NewStatement(sql, params))
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("server: acquiring connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("server: executing query: %w", err)
	}
	defer rows.Close()

	rowSets, err := scanJSONColumns(rows)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rowSets)
}

// ExecuteMutation runs the full POST /mutation path: wraps every operation's
// statement in the BEGIN/COMMIT pair translate.BuildMutationPlan already
// produced, asserting CHECK_CONSTRAINT on every returned row before
// committing (spec.md §4.9's post-write check semantics), and rolling the
// whole batch back on any failure since mutations across one request are
// one transaction.
func ExecuteMutation(ctx context.Context, pool *pgxpool.Pool, m *metadata.Metadata, request ndc.MutationRequest, isolationLevel string) (json.RawMessage, error) {
	plan, err := translate.BuildMutationPlan(m, request, isolationLevel)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("server: acquiring connection: %w", err)
	}
	defer conn.Release()

	preStatements, err := toStatements(plan.Pre)
	if err != nil {
		return nil, err
	}
	if err := ExecStatements(ctx, conn, preStatements); err != nil {
		return nil, fmt.Errorf("server: executing pre-statements: %w", err)
	}

	results := make([]map[string]interface{}, 0, len(plan.Query))
	for i, s := range plan.Query {
		stmt, err := toStatement(s)
		if err != nil {
			rollback(ctx, conn)
			return nil, err
		}

		rows, err := conn.Query(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			rollback(ctx, conn)
			return nil, fmt.Errorf("server: executing operation %d: %w", i, err)
		}
		returned, err := scanRowsAsMaps(rows)
		rows.Close()
		if err != nil {
			rollback(ctx, conn)
			return nil, err
		}

		for _, row := range returned {
			ok, _ := row[checkConstraintKey].(bool)
			if !ok {
				rollback(ctx, conn)
				return nil, fmt.Errorf("server: operation %d failed its post-mutation check constraint", i)
			}
			delete(row, checkConstraintKey)
		}

		results = append(results, map[string]interface{}{
			"affected_rows": len(returned),
			"returning":     returned,
		})
	}

	postStatements, err := toStatements(plan.Post)
	if err != nil {
		return nil, err
	}
	if err := ExecStatements(ctx, conn, postStatements); err != nil {
		return nil, fmt.Errorf("server: executing post-statements: %w", err)
	}

	return json.Marshal(map[string]interface{}{"operation_results": results})
}

func rollback(ctx context.Context, conn *pgxpool.Conn) {
	_, _ = conn.Exec(ctx, "ROLLBACK")
}

// scanJSONColumns reads every row of a "rows"/"aggregates"-shaped result set
// (POST /query's statement, whose columns are already row_to_json/json_agg
// encoded by the translator) into one map per row, preserving each present
// column's raw JSON text rather than round-tripping it through a decoded Go
// value.
func scanJSONColumns(rows pgx.Rows) ([]map[string]json.RawMessage, error) {
	fields := rows.FieldDescriptions()
	out := []map[string]json.RawMessage{}

	for rows.Next() {
		dest := make([]interface{}, len(fields))
		for i := range dest {
			dest[i] = new([]byte)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("server: scanning row: %w", err)
		}

		row := make(map[string]json.RawMessage, len(fields))
		for i, f := range fields {
			b := *(dest[i].(*[]byte))
			if b == nil {
				continue
			}
			row[string(f.Name)] = json.RawMessage(b)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("server: reading rows: %w", err)
	}
	return out, nil
}

// checkConstraintKey is sqlast.CheckConstraintField as scanRowsAsMaps stores
// it: every field name lowercased, since sqlast.NewColumnAlias renders a
// double-quoted, case-preserving identifier and Postgres echoes
// "CHECK_CONSTRAINT" back verbatim in the result set.
var checkConstraintKey = strings.ToLower(sqlast.CheckConstraintField)

// scanRowsAsMaps reads a `RETURNING *, ... AS CHECK_CONSTRAINT` result set
// into one map per row keyed by lowercased column name, using pgx's default
// type decoding since RETURNING's column set and types are whatever the
// target table declares, not known statically to this package.
func scanRowsAsMaps(rows pgx.Rows) ([]map[string]interface{}, error) {
	fields := rows.FieldDescriptions()
	out := []map[string]interface{}{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("server: reading row values: %w", err)
		}
		row := make(map[string]interface{}, len(fields))
		for i, f := range fields {
			row[strings.ToLower(string(f.Name))] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("server: reading rows: %w", err)
	}
	return out, nil
}

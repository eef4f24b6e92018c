package translate

import (
	"encoding/json"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateInsert is the insert generator's translator (spec §4.9): every
// object in the batch is checked against the table's column rules, missing
// keys fill DEFAULT, and an optional `constraint` predicate is projected as
// CHECK_CONSTRAINT in RETURNING so the post-write permission check runs in
// the same statement instead of a second round-trip.
func TranslateInsert(env *Env, state *State, table metadata.TableInfo, objects []map[string]json.RawMessage, constraint *ndc.Expression) (*sqlast.Insert, error) {
	plan, err := planInsertColumns(table, objects)
	if err != nil {
		return nil, err
	}

	values := make([][]sqlast.InsertExpression, 0, len(objects))
	for _, obj := range objects {
		row := make([]sqlast.InsertExpression, 0, len(plan.Columns))
		for _, colName := range plan.Columns {
			raw, ok := obj[colName]
			if !ok {
				row = append(row, sqlast.DefaultInsertExpr())
				continue
			}
			col := table.Columns[colName]
			expr, err := TranslateJSONValue(state, raw, col.Type)
			if err != nil {
				return nil, err
			}
			row = append(row, sqlast.ValueInsertExpr(expr))
		}
		values = append(values, row)
	}

	returning, err := mutationReturning(env, state, table, constraint)
	if err != nil {
		return nil, err
	}

	return &sqlast.Insert{
		Schema:    table.SchemaName,
		Table:     table.TableName,
		Columns:   plan.Columns,
		Values:    values,
		Returning: returning,
	}, nil
}

// mutationReturning builds `RETURNING *, <constraint> AS CHECK_CONSTRAINT`.
// When no constraint is configured the check column is unconditionally
// TRUE, so the runtime's post-write assertion logic stays uniform whether
// or not an operation actually declared one.
func mutationReturning(env *Env, state *State, table metadata.TableInfo, constraint *ndc.Expression) (sqlast.SelectList, error) {
	checkExpr := sqlast.TrueExpr()
	if constraint != nil {
		tableRef := sqlast.DBTable(table.SchemaName, table.TableName)
		scopes := RootAndCurrentTables{
			Root:    TableNameAndReference{Name: table.TableName, Reference: tableRef},
			Current: TableNameAndReference{Name: table.TableName, Reference: tableRef},
		}
		expr, err := TranslateExpression(env, state, scopes, *constraint)
		if err != nil {
			return sqlast.SelectList{}, err
		}
		checkExpr = expr
	}

	star := sqlast.StarSelectList()
	check := sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias(sqlast.CheckConstraintField), Expr: checkExpr})
	return sqlast.CompositeSelectList(star, check), nil
}

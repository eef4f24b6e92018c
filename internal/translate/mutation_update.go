package translate

import (
	"encoding/json"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateUpdateByKey is the update-by-key translator (spec §4.9):
// `UPDATE t SET ... WHERE <key> = <val> AND <pre> RETURNING *, <post> AS
// CHECK_CONSTRAINT`. `_set` is checked against the same column rules an
// insert uses, minus the "missing required column" case — an update may
// leave any column untouched.
func TranslateUpdateByKey(env *Env, state *State, table metadata.TableInfo, keyColumn string, keyValue json.RawMessage, set map[string]json.RawMessage, preCheck, postCheck *ndc.Expression) (*sqlast.Update, error) {
	if err := planSetColumns(table, set); err != nil {
		return nil, err
	}

	setItems := make([]sqlast.SetItem, 0, len(set))
	for name, raw := range set {
		col := table.Columns[name]
		expr, err := TranslateJSONValue(state, raw, col.Type)
		if err != nil {
			return nil, err
		}
		setItems = append(setItems, sqlast.SetItem{Column: name, Expr: expr})
	}

	tableRef := sqlast.DBTable(table.SchemaName, table.TableName)
	scopes := RootAndCurrentTables{
		Root:    TableNameAndReference{Name: table.TableName, Reference: tableRef},
		Current: TableNameAndReference{Name: table.TableName, Reference: tableRef},
	}

	keyCol, err := lookupTableColumn(table, keyColumn)
	if err != nil {
		return nil, err
	}
	keyExpr, err := TranslateJSONValue(state, keyValue, keyCol.Type)
	if err != nil {
		return nil, err
	}
	keyEquality := sqlast.BinaryOpExpr("=", sqlast.ColumnRefExpr(sqlast.TableColumn(tableRef, keyColumn)), keyExpr)

	where := keyEquality
	if preCheck != nil {
		preExpr, err := TranslateExpression(env, state, scopes, *preCheck)
		if err != nil {
			return nil, err
		}
		where = sqlast.AndExpr(keyEquality, preExpr)
	}

	returning, err := mutationReturning(env, state, table, postCheck)
	if err != nil {
		return nil, err
	}

	return &sqlast.Update{
		Schema:    table.SchemaName,
		Table:     table.TableName,
		Set:       setItems,
		Where:     where,
		Returning: returning,
	}, nil
}

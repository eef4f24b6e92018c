package translate

import (
	"encoding/json"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateDeleteByKey is the delete-by-key translator (spec §4.9): the
// same shape as update-by-key without `_set`, a single `check` predicate
// standing in for both pre- and post-check (a deleted row has nothing left
// to assert after the fact, so the predicate runs as the WHERE clause and
// CHECK_CONSTRAINT is simply TRUE on whatever RETURNING picks up).
func TranslateDeleteByKey(env *Env, state *State, table metadata.TableInfo, keyColumn string, keyValue json.RawMessage, check *ndc.Expression) (*sqlast.Delete, error) {
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
	where := sqlast.BinaryOpExpr("=", sqlast.ColumnRefExpr(sqlast.TableColumn(tableRef, keyColumn)), keyExpr)

	if check != nil {
		checkExpr, err := TranslateExpression(env, state, scopes, *check)
		if err != nil {
			return nil, err
		}
		where = sqlast.AndExpr(where, checkExpr)
	}

	returning, err := mutationReturning(env, state, table, nil)
	if err != nil {
		return nil, err
	}

	return &sqlast.Delete{
		Schema:    table.SchemaName,
		Table:     table.TableName,
		Where:     where,
		Returning: returning,
	}, nil
}

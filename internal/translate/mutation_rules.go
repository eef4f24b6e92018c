package translate

import (
	"encoding/json"
	"sort"

	"github.com/hasura/ndc-postgres-go/internal/metadata"
)

// insertColumnPlan is the column set an insert ends up writing, after
// checking every table column against the Nullable/HasDefault/Identity/
// Generated rules (spec §4.9) and computing the union of keys actually
// present across the request's objects.
type insertColumnPlan struct {
	// Columns lists every column the generated INSERT statement writes to,
	// in a fixed (sorted) order so VALUES rows line up with it.
	Columns []string
}

// planInsertColumns validates a batch of insert objects against a table's
// column rules and returns the column list every VALUES row will supply a
// cell for (DEFAULT where the object omitted the key).
func planInsertColumns(table metadata.TableInfo, objects []map[string]json.RawMessage) (insertColumnPlan, error) {
	present := map[string]bool{}
	for _, obj := range objects {
		for k := range obj {
			present[k] = true
		}
	}

	names := make([]string, 0, len(table.Columns))
	for name := range table.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	columns := make([]string, 0, len(names))
	for _, name := range names {
		col := table.Columns[name]
		switch {
		case col.IsGenerated == metadata.GeneratedStored:
			if present[name] {
				return insertColumnPlan{}, errColumnIsGenerated(name)
			}
		case col.IsIdentity == metadata.IdentityAlways:
			if present[name] {
				return insertColumnPlan{}, errColumnIsIdentityAlways(name)
			}
		case col.Nullable == metadata.NullableYes || col.HasDefault == metadata.HasDefaultYes || col.IsIdentity == metadata.IdentityByDefault:
			// optional either way; written if any object supplied it.
		default:
			if !present[name] {
				return insertColumnPlan{}, errMissingColumnInInsert(name)
			}
		}
		if present[name] {
			columns = append(columns, name)
		}
	}

	return insertColumnPlan{Columns: columns}, nil
}

// planSetColumns applies the same column rules to an UPDATE's `_set` object:
// any column named in `_set` must be writable (nullable, has-default,
// identity-by-default, or an ordinary column); generated/identity-always
// columns are rejected outright since an UPDATE naming them is never valid,
// regardless of whether they're "present" in an insert-shaped sense.
func planSetColumns(table metadata.TableInfo, set map[string]json.RawMessage) error {
	for name := range set {
		col, err := lookupTableColumn(table, name)
		if err != nil {
			return err
		}
		if col.IsGenerated == metadata.GeneratedStored {
			return errColumnIsGenerated(name)
		}
		if col.IsIdentity == metadata.IdentityAlways {
			return errColumnIsIdentityAlways(name)
		}
	}
	return nil
}

func lookupTableColumn(table metadata.TableInfo, name string) (metadata.ColumnInfo, error) {
	col, ok := table.Columns[name]
	if !ok {
		return metadata.ColumnInfo{}, errColumnNotFoundInCollection(name, table.TableName)
	}
	return col, nil
}

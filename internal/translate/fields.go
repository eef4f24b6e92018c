package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// TranslateFields is the row/nested-field translator (spec §4.8): it
// projects every requested field of a collection into select items plus the
// joins those fields' nested/relationship translations need. Field order is
// not significant to the result (NDC responses are objects keyed by field
// alias), so fields are processed in map order and the returned joins list
// is simply their concatenation.
func TranslateFields(env *Env, state *State, scopes RootAndCurrentTables, table TableNameAndReference, fields map[string]ndc.Field) ([]sqlast.SelectItem, []sqlast.Join, error) {
	items := make([]sqlast.SelectItem, 0, len(fields))
	var joins []sqlast.Join

	for alias, field := range fields {
		switch field.Kind {
		case ndc.FieldColumn:
			item, fieldJoins, err := translateColumnField(env, state, scopes, table, alias, field)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, item)
			joins = append(joins, fieldJoins...)

		case ndc.FieldRelationship:
			item, join, err := translateRelationshipField(env, state, scopes, table, alias, field)
			if err != nil {
				return nil, nil, err
			}
			items = append(items, item)
			joins = append(joins, join)

		default:
			return nil, nil, errUnexpectedStructure("unknown field kind")
		}
	}

	return items, joins, nil
}

func translateColumnField(env *Env, state *State, scopes RootAndCurrentTables, table TableNameAndReference, alias string, field ndc.Field) (sqlast.SelectItem, []sqlast.Join, error) {
	// table.Name is a collection, or a composite type name when projecting
	// fields nested inside a composite column.
	fieldsInfo, err := env.LookupCompositeType(table.Name)
	if err != nil {
		return sqlast.SelectItem{}, nil, err
	}
	colType, err := fieldsInfo.LookupColumn(field.Column)
	if err != nil {
		return sqlast.SelectItem{}, nil, err
	}
	colExpr := sqlast.ColumnRefExpr(sqlast.TableColumn(table.Reference, field.Column))

	if field.Fields == nil {
		return sqlast.SelectItem{
			Alias: sqlast.NewColumnAlias(alias),
			Expr:  ApplyTypeRepresentationCast(env, state, colExpr, colType),
		}, nil, nil
	}

	item, join, err := translateNestedField(env, state, scopes, table.Name, colExpr, colType, alias, field.Fields)
	if err != nil {
		return sqlast.SelectItem{}, nil, err
	}
	return item, []sqlast.Join{join}, nil
}

// translateNestedField handles a column whose requested shape is itself a
// field tree: a composite column ("object") or an array of composite values
// ("array"). Both unpack the column in a sub-select, project the nested
// fields over it, and collect the result as JSON in a lateral join.
func translateNestedField(env *Env, state *State, scopes RootAndCurrentTables, parentTableName string, outerColExpr sqlast.Expression, colType metadata.Type, alias string, nested *ndc.NestedField) (sqlast.SelectItem, sqlast.Join, error) {
	switch nested.Kind {
	case ndc.NestedObject:
		return translateNestedObject(env, state, scopes, parentTableName, outerColExpr, colType, alias, nested.Fields)
	case ndc.NestedArray:
		return translateNestedArray(env, state, scopes, parentTableName, outerColExpr, colType, alias, nested.Field)
	default:
		return sqlast.SelectItem{}, sqlast.Join{}, errUnexpectedStructure("unknown nested field kind")
	}
}

func translateNestedObject(env *Env, state *State, scopes RootAndCurrentTables, parentTableName string, outerColExpr sqlast.Expression, colType metadata.Type, alias string, objectFields map[string]ndc.Field) (sqlast.SelectItem, sqlast.Join, error) {
	if colType.Kind != metadata.TypeComposite {
		return sqlast.SelectItem{}, sqlast.Join{}, errNestedFieldNotOfCompositeType(parentTableName)
	}

	unpackAlias := state.MakeNestedFieldsTableAlias(parentTableName)
	unpackSelect := sqlast.SelectComposite(outerColExpr)

	current := TableNameAndReference{Name: colType.CompositeType, Reference: sqlast.AliasedTable(unpackAlias)}
	nestedItems, nestedJoins, err := TranslateFields(env, state, scopes.WithCurrent(current), current, objectFields)
	if err != nil {
		return sqlast.SelectItem{}, sqlast.Join{}, err
	}

	innerAlias := state.MakeNestedFieldsTableAlias(parentTableName + "_inner")
	innerSelect := &sqlast.Select{
		SelectList: sqlast.ListSelectList(nestedItems...),
		From:       &sqlast.From{Kind: sqlast.FromSelect, Select: unpackSelect, Alias: unpackAlias},
		Joins:      nestedJoins,
		Where:      sqlast.TrueExpr(),
	}

	collectAlias := state.MakeNestedFieldsTableAlias(parentTableName + "_collect")
	outerSelect := &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{
			Alias: sqlast.NewColumnAlias("collected"),
			Expr:  sqlast.RowToJSONExpr(sqlast.AliasedTable(innerAlias)),
		}),
		From:  &sqlast.From{Kind: sqlast.FromSelect, Select: innerSelect, Alias: innerAlias},
		Where: sqlast.TrueExpr(),
	}

	join := sqlast.LeftOuterJoinLateral(outerSelect, collectAlias)
	item := sqlast.SelectItem{
		Alias: sqlast.NewColumnAlias(alias),
		Expr:  sqlast.ColumnRefExpr(sqlast.AliasedColumn(sqlast.AliasedTable(collectAlias), sqlast.NewColumnAlias("collected"))),
	}
	return item, join, nil
}

func translateNestedArray(env *Env, state *State, scopes RootAndCurrentTables, parentTableName string, outerColExpr sqlast.Expression, colType metadata.Type, alias string, elementField *ndc.NestedField) (sqlast.SelectItem, sqlast.Join, error) {
	if colType.Kind != metadata.TypeArray {
		return sqlast.SelectItem{}, sqlast.Join{}, errNestedFieldNotOfArrayType(parentTableName)
	}
	elemType := *colType.ElementType
	if elemType.Kind == metadata.TypeArray {
		return sqlast.SelectItem{}, sqlast.Join{}, errNestedArraysNotSupported(parentTableName)
	}
	if elemType.Kind != metadata.TypeComposite {
		return sqlast.SelectItem{}, sqlast.Join{}, errNestedFieldNotOfCompositeType(parentTableName)
	}

	objectFields := map[string]ndc.Field{}
	if elementField != nil && elementField.Kind == ndc.NestedObject {
		objectFields = elementField.Fields
	}

	unpackAlias := state.MakeNestedFieldsTableAlias(parentTableName)
	unpackSelect := sqlast.SelectComposite(sqlast.FunctionCallExpr("unnest", outerColExpr))

	current := TableNameAndReference{Name: elemType.CompositeType, Reference: sqlast.AliasedTable(unpackAlias)}
	nestedItems, nestedJoins, err := TranslateFields(env, state, scopes.WithCurrent(current), current, objectFields)
	if err != nil {
		return sqlast.SelectItem{}, sqlast.Join{}, err
	}

	innerAlias := state.MakeNestedFieldsTableAlias(parentTableName + "_inner")
	innerSelect := &sqlast.Select{
		SelectList: sqlast.ListSelectList(nestedItems...),
		From:       &sqlast.From{Kind: sqlast.FromSelect, Select: unpackSelect, Alias: unpackAlias},
		Joins:      nestedJoins,
		Where:      sqlast.TrueExpr(),
	}

	jsonAgg := sqlast.FunctionCallExpr("json_agg", sqlast.RowToJSONExpr(sqlast.AliasedTable(innerAlias)))
	coalesced := sqlast.FunctionCallExpr("coalesce", jsonAgg, sqlast.CastExpr(sqlast.ValueExpr(sqlast.JSONValue([]byte("[]"))), sqlast.NewScalarTypeName("json")))
	midSelect := &sqlast.Select{
		SelectList: sqlast.ListSelectList(sqlast.SelectItem{Alias: sqlast.NewColumnAlias("collected"), Expr: coalesced}),
		From:       &sqlast.From{Kind: sqlast.FromSelect, Select: innerSelect, Alias: innerAlias},
		Where:      sqlast.TrueExpr(),
	}

	joinAlias := state.MakeNestedFieldsTableAlias(parentTableName + "_array")
	join := sqlast.LeftOuterJoinLateral(midSelect, joinAlias)
	item := sqlast.SelectItem{
		Alias: sqlast.NewColumnAlias(alias),
		Expr:  sqlast.ColumnRefExpr(sqlast.AliasedColumn(sqlast.AliasedTable(joinAlias), sqlast.NewColumnAlias("collected"))),
	}
	return item, join, nil
}

package server

import "github.com/hasura/ndc-postgres-go/internal/metadata"

// capabilitiesResponse is the fixed shape GET /capabilities returns: this
// connector's NDC version and the query/mutation feature set it supports.
// Unlike GET /schema this never depends on the loaded catalog;
// ndcCapabilities builds the same value on every call.
type capabilitiesResponse struct {
	Version      string       `json:"version"`
	Capabilities capabilities `json:"capabilities"`
}

type capabilities struct {
	Query    queryCapabilities    `json:"query"`
	Mutation mutationCapabilities `json:"mutation"`
}

type queryCapabilities struct {
	Aggregates  map[string]interface{} `json:"aggregates,omitempty"`
	Variables   map[string]interface{} `json:"variables,omitempty"`
	NestedFields nestedFieldCapabilities `json:"nested_fields"`
}

type nestedFieldCapabilities struct {
	FilterBy map[string]interface{} `json:"filter_by,omitempty"`
	OrderBy  map[string]interface{} `json:"order_by,omitempty"`
}

type mutationCapabilities struct {
	TransactionalMutation map[string]interface{} `json:"transactional,omitempty"`
}

// ndcCapabilities is the one GET /capabilities response body: both
// aggregates and request-level variables are implemented
// (internal/translate/query.go, bindVariablesTable), nested field
// filter/order-by are not (spec.md's Non-goals).
func ndcCapabilities() capabilitiesResponse {
	return capabilitiesResponse{
		Version: "0.1.6",
		Capabilities: capabilities{
			Query: queryCapabilities{
				Aggregates: map[string]interface{}{},
				Variables:  map[string]interface{}{},
			},
			Mutation: mutationCapabilities{
				TransactionalMutation: map[string]interface{}{},
			},
		},
	}
}

// schemaResponse is GET /schema's body: every table and native query exposed
// as an NDC collection, plus the scalar type table describing each scalar's
// comparison operators and aggregate functions.
type schemaResponse struct {
	ScalarTypes map[string]scalarTypeSchema `json:"scalar_types"`
	ObjectTypes map[string]objectTypeSchema `json:"object_types"`
	Collections []collectionSchema          `json:"collections"`
	Procedures  []procedureSchema           `json:"procedures"`
}

type scalarTypeSchema struct {
	AggregateFunctions  map[string]aggregateFunctionSchema  `json:"aggregate_functions"`
	ComparisonOperators map[string]comparisonOperatorSchema `json:"comparison_operators"`
}

type aggregateFunctionSchema struct {
	ResultType typeSchema `json:"result_type"`
}

type comparisonOperatorSchema struct {
	ArgumentType typeSchema `json:"argument_type"`
}

type objectTypeSchema struct {
	Fields map[string]objectFieldSchema `json:"fields"`
}

type objectFieldSchema struct {
	Type typeSchema `json:"type"`
}

type typeSchema struct {
	Type        string      `json:"type"`
	Name        string      `json:"name,omitempty"`
	ElementType *typeSchema `json:"element_type,omitempty"`
}

type collectionSchema struct {
	Name         string                 `json:"name"`
	Type         string                 `json:"type"`
	Arguments    map[string]typeSchema  `json:"arguments,omitempty"`
	UniquenessConstraints map[string][]string `json:"uniqueness_constraints,omitempty"`
}

type procedureSchema struct {
	Name      string                `json:"name"`
	Arguments map[string]typeSchema `json:"arguments"`
	ResultType typeSchema           `json:"result_type"`
}

func typeSchemaOf(t metadata.Type) typeSchema {
	switch t.Kind {
	case metadata.TypeArray:
		elem := typeSchemaOf(*t.ElementType)
		return typeSchema{Type: "array", ElementType: &elem}
	case metadata.TypeComposite:
		return typeSchema{Type: "named", Name: t.CompositeType}
	default:
		return typeSchema{Type: "named", Name: t.ScalarType}
	}
}

// buildSchemaResponse derives GET /schema's body directly from the loaded
// catalog: every scalar type's operator/aggregate table, every table as a
// collection, and every native query as a second collection family,
// mirroring metadata.Metadata's own shape rather than re-deriving it from
// the database.
func buildSchemaResponse(m *metadata.Metadata) schemaResponse {
	resp := schemaResponse{
		ScalarTypes: map[string]scalarTypeSchema{},
		ObjectTypes: map[string]objectTypeSchema{},
	}

	for scalarName, ops := range m.ComparisonOperators {
		entry := resp.ScalarTypes[scalarName]
		if entry.ComparisonOperators == nil {
			entry.ComparisonOperators = map[string]comparisonOperatorSchema{}
		}
		for _, op := range ops {
			entry.ComparisonOperators[op.Name] = comparisonOperatorSchema{ArgumentType: typeSchemaOf(op.ArgumentType)}
		}
		resp.ScalarTypes[scalarName] = entry
	}
	for scalarName, aggs := range m.AggregateFunctions {
		entry := resp.ScalarTypes[scalarName]
		if entry.AggregateFunctions == nil {
			entry.AggregateFunctions = map[string]aggregateFunctionSchema{}
		}
		for _, agg := range aggs {
			entry.AggregateFunctions[agg.Name] = aggregateFunctionSchema{ResultType: typeSchemaOf(agg.ReturnType)}
		}
		resp.ScalarTypes[scalarName] = entry
	}

	for tableName, table := range m.Tables {
		objFields := map[string]objectFieldSchema{}
		for columnName, col := range table.Columns {
			objFields[columnName] = objectFieldSchema{Type: typeSchemaOf(col.Type)}
		}
		resp.ObjectTypes[tableName] = objectTypeSchema{Fields: objFields}

		uniqueness := map[string][]string{}
		for _, u := range table.Uniqueness {
			uniqueness[u.Name] = u.UniqueColumns
		}
		resp.Collections = append(resp.Collections, collectionSchema{
			Name:                  tableName,
			Type:                  tableName,
			UniquenessConstraints: uniqueness,
		})
	}

	for queryName, nq := range m.NativeQueries {
		objFields := map[string]objectFieldSchema{}
		for columnName, col := range nq.Columns {
			objFields[columnName] = objectFieldSchema{Type: typeSchemaOf(col.Type)}
		}
		resp.ObjectTypes[queryName] = objectTypeSchema{Fields: objFields}

		args := map[string]typeSchema{}
		for argName, arg := range nq.Arguments {
			args[argName] = typeSchemaOf(arg.Type)
		}
		resp.Collections = append(resp.Collections, collectionSchema{Name: queryName, Type: queryName, Arguments: args})
	}

	return resp
}

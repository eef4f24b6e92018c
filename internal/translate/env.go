package translate

import (
	"github.com/hasura/ndc-postgres-go/internal/metadata"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/sqlast"
)

// CollectionKind discriminates CollectionInfo's two shapes: an ordinary
// table/view, or a named native query exposed as a collection.
type CollectionKind int

const (
	CollectionTable CollectionKind = iota
	CollectionNativeQuery
)

// CollectionInfo is the env.lookup_collection result: a table or a native
// query, carried as a tagged struct rather than an interface so every switch
// over it is exhaustive at compile time.
type CollectionInfo struct {
	Kind        CollectionKind
	Name        string
	Table       metadata.TableInfo
	NativeQuery metadata.NativeQuery
}

// LookupColumn finds a column's name and type within this collection.
func (c CollectionInfo) LookupColumn(columnName string) (metadata.ColumnInfo, error) {
	var columns map[string]metadata.ColumnInfo
	switch c.Kind {
	case CollectionTable:
		columns = c.Table.Columns
	case CollectionNativeQuery:
		columns = c.NativeQuery.Columns
	}
	col, ok := columns[columnName]
	if !ok {
		return metadata.ColumnInfo{}, errColumnNotFoundInCollection(columnName, c.Name)
	}
	return col, nil
}

// CompositeTypeKind discriminates CompositeTypeInfo's two shapes: a
// collection reused as a composite source (rare, but keeps lookup uniform),
// or a genuine named composite type.
type CompositeTypeKind int

const (
	CompositeFromCollection CompositeTypeKind = iota
	CompositeNamed
)

type CompositeTypeInfo struct {
	Kind       CompositeTypeKind
	Collection CollectionInfo
	Name       string
	Composite  metadata.CompositeType
}

func (c CompositeTypeInfo) LookupColumn(fieldName string) (metadata.Type, error) {
	switch c.Kind {
	case CompositeFromCollection:
		col, err := c.Collection.LookupColumn(fieldName)
		if err != nil {
			return metadata.Type{}, err
		}
		return col.Type, nil
	default:
		field, ok := c.Composite.Fields[fieldName]
		if !ok {
			return metadata.Type{}, errColumnNotFoundInCollection(fieldName, c.Name)
		}
		return field.Type, nil
	}
}

// Env is a read-only view over the catalog and the request's relationships
// for the duration of one translation. It never changes once built; nothing
// in internal/translate mutates an Env field after NewEnv returns.
type Env struct {
	metadata         *metadata.Metadata
	relationships    map[string]ndc.Relationship
	mutationsVersion *metadata.MutationsVersion
	variablesTable   *sqlast.TableReference
}

func NewEnv(m *metadata.Metadata, relationships map[string]ndc.Relationship, variablesTable *sqlast.TableReference) *Env {
	return &Env{
		metadata:         m,
		relationships:    relationships,
		mutationsVersion: m.MutationsVersion,
		variablesTable:   variablesTable,
	}
}

func (e *Env) LookupCollection(name string) (CollectionInfo, error) {
	if t, ok := e.metadata.Tables[name]; ok {
		return CollectionInfo{Kind: CollectionTable, Name: name, Table: t}, nil
	}
	if nq, ok := e.metadata.NativeQueries[name]; ok {
		return CollectionInfo{Kind: CollectionNativeQuery, Name: name, NativeQuery: nq}, nil
	}
	return CollectionInfo{}, errCollectionNotFound(name)
}

func (e *Env) LookupCompositeType(typeName string) (CompositeTypeInfo, error) {
	collection, err := e.LookupCollection(typeName)
	if err == nil {
		return CompositeTypeInfo{Kind: CompositeFromCollection, Collection: collection, Name: typeName}, nil
	}
	if terr, ok := err.(*Error); !ok || terr.Kind != CollectionNotFound {
		return CompositeTypeInfo{}, err
	}
	composite, ok := e.metadata.CompositeTypes[typeName]
	if !ok {
		return CompositeTypeInfo{}, errCollectionNotFound(typeName)
	}
	return CompositeTypeInfo{Kind: CompositeNamed, Name: typeName, Composite: composite}, nil
}

func (e *Env) LookupNativeQuery(name string) (metadata.NativeQuery, error) {
	nq, ok := e.metadata.NativeQueries[name]
	if !ok {
		return metadata.NativeQuery{}, errProcedureNotFound(name)
	}
	return nq, nil
}

func (e *Env) LookupRelationship(name string) (ndc.Relationship, error) {
	r, ok := e.relationships[name]
	if !ok {
		return ndc.Relationship{}, errRelationshipNotFound(name)
	}
	return r, nil
}

// LookupComparisonOperator resolves a (scalar type, operator name) pair.
func (e *Env) LookupComparisonOperator(scalarType, name string) (metadata.ComparisonOperator, error) {
	ops, ok := e.metadata.ComparisonOperators[scalarType]
	if ok {
		for _, op := range ops {
			if op.Name == name {
				return op, nil
			}
		}
	}
	return metadata.ComparisonOperator{}, errOperatorNotFound(name, scalarType)
}

// LookupAggregateFunction resolves a (scalar type, function name) pair.
func (e *Env) LookupAggregateFunction(scalarType, name string) (metadata.AggregateFunction, error) {
	fns, ok := e.metadata.AggregateFunctions[scalarType]
	if ok {
		for _, fn := range fns {
			if fn.Name == name {
				return fn, nil
			}
		}
	}
	return metadata.AggregateFunction{}, errOperatorNotFound(name, scalarType)
}

func (e *Env) LookupTypeRepresentation(scalarType string) metadata.TypeRepresentation {
	rep, ok := e.metadata.ScalarTypeRepresentations[scalarType]
	if !ok {
		return metadata.NewTypeRepresentation(metadata.RepString)
	}
	return rep
}

// GetVariablesTable returns the synthetic variables-table reference, or
// UnexpectedVariable if the request declared no variable bindings.
func (e *Env) GetVariablesTable() (sqlast.TableReference, error) {
	if e.variablesTable == nil {
		return sqlast.TableReference{}, errUnexpectedVariable()
	}
	return *e.variablesTable, nil
}

func (e *Env) MutationsVersion() metadata.MutationsVersion {
	if e.mutationsVersion == nil {
		return metadata.MutationsExperimental
	}
	return *e.mutationsVersion
}

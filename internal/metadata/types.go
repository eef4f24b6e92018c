// Package metadata describes the connector's catalog: the relational schema,
// native queries, and comparison/aggregate function tables that
// internal/translate reads from when turning an NDC request into SQL. It is
// deserialized from configuration.json and never mutated after load.
package metadata

// Version pins the shape of configuration.json on disk. Upgrades only ever
// move forward: "3" -> "4" -> "5".
type Version string

const (
	Version3 Version = "3"
	Version4 Version = "4"
	Version5 Version = "5"

	CurrentVersion = Version5
)

// MutationsVersion selects which family of generated mutation procedures a
// deployment exposes. A connector never serves both families at once; see
// DESIGN.md for why the two were not unified.
type MutationsVersion string

const (
	MutationsExperimental MutationsVersion = "experimental"
	MutationsV1           MutationsVersion = "v1"
)

// Metadata is the root catalog, the elaborated form of configuration.json
// that internal/translate's Env is built around.
type Metadata struct {
	Version              Version                       `json:"version"`
	Tables               map[string]TableInfo          `json:"tables"`
	NativeQueries        map[string]NativeQuery        `json:"nativeQueries"`
	CompositeTypes       map[string]CompositeType      `json:"compositeTypes"`
	ComparisonOperators   map[string][]ComparisonOperator `json:"comparisonOperators"`
	AggregateFunctions    map[string][]AggregateFunction   `json:"aggregateFunctions"`
	ScalarTypeRepresentations map[string]TypeRepresentation `json:"scalarTypeRepresentations"`
	MutationsVersion      *MutationsVersion             `json:"mutationsVersion,omitempty"`
}

// TableInfo describes one queryable/mutable relation: a table, view, or
// materialized view in the source database.
type TableInfo struct {
	SchemaName  string                `json:"schemaName"`
	TableName   string                `json:"tableName"`
	Columns     map[string]ColumnInfo `json:"columns"`
	Uniqueness  []UniquenessConstraint `json:"uniquenessConstraints"`
	ForeignKeys map[string]ForeignRelation `json:"foreignRelations"`
	Description *string               `json:"description,omitempty"`
}

// Nullable says whether NULL may be written to a column, and if not, why the
// connector should never even attempt to.
type Nullable string

const (
	NullableYes              Nullable = "nullable"
	NullableNo               Nullable = "nonNullable"
	NullableNoForcedByPG     Nullable = "forcedNonNullable"
)

// HasDefault says whether the database supplies a value when the column is
// omitted or written as DEFAULT.
type HasDefault string

const (
	HasDefaultYes HasDefault = "hasDefault"
	HasDefaultNo  HasDefault = "noDefault"
)

// IsIdentity classifies a column's IDENTITY status, mirroring Postgres'
// GENERATED { ALWAYS | BY DEFAULT } AS IDENTITY distinction. IdentityAlways
// columns may never be written to, even with DEFAULT.
type IsIdentity string

const (
	IdentityNotIdentity    IsIdentity = "notIdentity"
	IdentityByDefault      IsIdentity = "byDefault"
	IdentityAlways         IsIdentity = "always"
)

// IsGenerated classifies GENERATED ALWAYS AS ( ... ) STORED columns, which
// like IdentityAlways can never appear in an INSERT/UPDATE column list.
type IsGenerated string

const (
	GeneratedNotGenerated IsGenerated = "notGenerated"
	GeneratedStored       IsGenerated = "stored"
)

// ColumnInfo is one column's full type and writability profile, the unit
// planInsertColumns and planSetColumns (internal/translate/mutation_rules.go)
// validate NDC insert/update rows against.
type ColumnInfo struct {
	Name        string      `json:"name"`
	Type        Type        `json:"type"`
	Nullable    Nullable    `json:"nullable"`
	HasDefault  HasDefault  `json:"hasDefault"`
	IsIdentity  IsIdentity  `json:"isIdentity"`
	IsGenerated IsGenerated `json:"isGenerated"`
	Description *string     `json:"description,omitempty"`
}

// UniquenessConstraint names a set of columns whose combination a mutation
// may target with an "update by key" or "delete by key" operation.
type UniquenessConstraint struct {
	Name          string   `json:"name"`
	UniqueColumns []string `json:"uniqueColumns"`
}

// ForeignRelation describes one FK-derived relationship target, expressed as
// a map from this table's column names to the foreign table's column names.
type ForeignRelation struct {
	ForeignTable  string            `json:"foreignTable"`
	ColumnMapping map[string]string `json:"columnMapping"`
}

// TypeKind discriminates metadata.Type's three variants: a scalar named by
// the underlying Postgres type, an array of some element type, or a
// composite (row) type looked up in Metadata.CompositeTypes.
type TypeKind int

const (
	TypeScalar TypeKind = iota
	TypeArray
	TypeComposite
)

// Type is a closed sum over the three ways a column, argument, or field can
// be typed. It is never a Go interface: translate.Env switches on Kind so
// that adding a variant is a compile-time-visible change everywhere it
// matters, the same discipline sqlast.Expression follows.
type Type struct {
	Kind          TypeKind
	ScalarType    string // valid when Kind == TypeScalar
	ElementType   *Type  // valid when Kind == TypeArray
	CompositeType string // valid when Kind == TypeComposite, a key into Metadata.CompositeTypes
}

func ScalarTypeOf(name string) Type { return Type{Kind: TypeScalar, ScalarType: name} }
func ArrayTypeOf(element Type) Type { return Type{Kind: TypeArray, ElementType: &element} }
func CompositeTypeOf(name string) Type { return Type{Kind: TypeComposite, CompositeType: name} }

// CompositeType is a Postgres row/composite type's field list, looked up
// when translating a composite-typed column or a jsonb_populate_record cast.
type CompositeType struct {
	Fields map[string]FieldInfo `json:"fields"`
}

// FieldInfo is one field of a CompositeType.
type FieldInfo struct {
	Type        Type    `json:"type"`
	Description *string `json:"description,omitempty"`
}

// OperatorKind distinguishes operators the connector can render directly as
// a native infix/function operator from those that need special-cased
// translation (the "in" operator becomes `= ANY`, not a literal `IN`
// operator lookup, for instance).
type OperatorKind string

const (
	OperatorEqual  OperatorKind = "equal"
	OperatorIn     OperatorKind = "in"
	OperatorCustom OperatorKind = "custom"
)

// ComparisonOperator names one comparison usable in an NDC predicate against
// a scalar type, and the argument type it expects.
type ComparisonOperator struct {
	Name         string       `json:"name"`
	Kind         OperatorKind `json:"kind"`
	ArgumentType Type         `json:"argumentType"`
	// Operator is the literal SQL operator or function name to render for
	// Kind == OperatorCustom, e.g. "~~*" for a case-insensitive LIKE.
	Operator string `json:"operator,omitempty"`
}

// AggregateFunction names one aggregate usable against a scalar type's
// columns, e.g. "sum", "avg", "max".
type AggregateFunction struct {
	Name       string `json:"name"`
	ReturnType Type   `json:"returnType"`
}

// NativeQuery is a named, parameterized raw-SQL query the connector exposes
// as a queryable collection alongside ordinary tables. Sql is a template with
// `{{argname}}` holes; Arguments and Columns describe its interface.
type NativeQuery struct {
	Sql       string                `json:"sql"`
	Columns   map[string]ColumnInfo `json:"columns"`
	Arguments map[string]ColumnInfo `json:"arguments"`
	Description *string             `json:"description,omitempty"`
}

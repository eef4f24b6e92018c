package metadata

// TypeRepresentationKind discriminates every shape a scalar type's JSON
// projection can take. It is wider than the database introspector strictly
// needs today (BigDecimalAsString, Geography, Geometry have no scalar
// introspected from information_schema yet) because configuration.json is
// hand-editable: a connector author can declare a representation the
// introspector doesn't infer.
type TypeRepresentationKind string

const (
	RepBoolean            TypeRepresentationKind = "boolean"
	RepString              TypeRepresentationKind = "string"
	RepNumber              TypeRepresentationKind = "number"
	RepInteger             TypeRepresentationKind = "integer"
	RepInt16               TypeRepresentationKind = "int16"
	RepInt32               TypeRepresentationKind = "int32"
	RepInt64               TypeRepresentationKind = "int64"
	RepInt64AsString       TypeRepresentationKind = "int64AsString"
	RepFloat32             TypeRepresentationKind = "float32"
	RepFloat64             TypeRepresentationKind = "float64"
	RepBigDecimal          TypeRepresentationKind = "bigDecimal"
	RepBigDecimalAsString  TypeRepresentationKind = "bigDecimalAsString"
	RepTimestamp           TypeRepresentationKind = "timestamp"
	RepTimestampTZ         TypeRepresentationKind = "timestampTZ"
	RepTime                TypeRepresentationKind = "time"
	RepTimeTZ              TypeRepresentationKind = "timeTZ"
	RepDate                TypeRepresentationKind = "date"
	RepUUID                TypeRepresentationKind = "uuid"
	RepJSON                TypeRepresentationKind = "json"
	RepGeography           TypeRepresentationKind = "geography"
	RepGeometry            TypeRepresentationKind = "geometry"
	RepEnum                TypeRepresentationKind = "enum"
)

// TypeRepresentation controls how internal/translate casts a projected
// column's value at query time (see §4.10 of the translation design): most
// variants are a no-op render, but Int64AsString and BigDecimalAsString wrap
// the expression in a CAST(... AS text) so oversized numbers survive a JSON
// round-trip without precision loss, and Enum carries its legal value set for
// the Config Schema only (the connector does not itself enforce enum
// membership; the source database's CHECK/ENUM constraint already does).
type TypeRepresentation struct {
	Kind   TypeRepresentationKind
	Values []string // set when Kind == RepEnum
}

func NewTypeRepresentation(kind TypeRepresentationKind) TypeRepresentation {
	return TypeRepresentation{Kind: kind}
}

func EnumRepresentation(values []string) TypeRepresentation {
	return TypeRepresentation{Kind: RepEnum, Values: values}
}

// NeedsTextCast reports whether a projected value of this representation
// must be cast through `::text` to survive JSON encoding without precision
// loss, per spec.md §4.10.
func (r TypeRepresentation) NeedsTextCast() bool {
	return r.Kind == RepInt64AsString || r.Kind == RepBigDecimalAsString
}

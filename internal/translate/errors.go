package translate

import "fmt"

// ErrorKind enumerates the translator's closed error taxonomy (spec §4.11).
// Every value is returned, never panicked; internal/server maps Kind to an
// HTTP status in one place so that mapping stays exhaustive and easy to
// audit.
type ErrorKind string

const (
	CollectionNotFound          ErrorKind = "CollectionNotFound"
	ColumnNotFoundInCollection  ErrorKind = "ColumnNotFoundInCollection"
	RelationshipNotFound        ErrorKind = "RelationshipNotFound"
	OperatorNotFound            ErrorKind = "OperatorNotFound"
	ProcedureNotFound            ErrorKind = "ProcedureNotFound"
	ArgumentNotFound             ErrorKind = "ArgumentNotFound"
	UnexpectedVariable            ErrorKind = "UnexpectedVariable"
	UnexpectedStructure           ErrorKind = "UnexpectedStructure"
	NestedFieldNotOfCompositeType ErrorKind = "NestedFieldNotOfCompositeType"
	NestedFieldNotOfArrayType     ErrorKind = "NestedFieldNotOfArrayType"
	NestedArraysNotSupported      ErrorKind = "NestedArraysNotSupported"
	ColumnIsGenerated              ErrorKind = "ColumnIsGenerated"
	ColumnIsIdentityAlways         ErrorKind = "ColumnIsIdentityAlways"
	MissingColumnInInsert          ErrorKind = "MissingColumnInInsert"
	UnableToDeserializeNumberAsF64 ErrorKind = "UnableToDeserializeNumberAsF64"
	CapabilityNotSupported         ErrorKind = "CapabilityNotSupported"
)

// Error is the translator's single error type. Names carries whatever
// offending identifiers (a column name, an operator name, a collection name)
// the client should be able to correlate with its request, in the order they
// appear in the message.
type Error struct {
	Kind    ErrorKind
	Message string
	Names   []string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, format string, names ...string) *Error {
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Names: names}
}

func errCollectionNotFound(name string) *Error {
	return newError(CollectionNotFound, "collection not found: %s", name)
}

func errColumnNotFoundInCollection(column, collection string) *Error {
	return newError(ColumnNotFoundInCollection, "column %s not found in collection %s", column, collection)
}

func errRelationshipNotFound(name string) *Error {
	return newError(RelationshipNotFound, "relationship not found: %s", name)
}

func errOperatorNotFound(operator, typeName string) *Error {
	return newError(OperatorNotFound, "operator %s not found for type %s", operator, typeName)
}

func errProcedureNotFound(name string) *Error {
	return newError(ProcedureNotFound, "procedure not found: %s", name)
}

func errArgumentNotFound(name string) *Error {
	return newError(ArgumentNotFound, "argument not found: %s", name)
}

func errUnexpectedVariable() *Error {
	return &Error{Kind: UnexpectedVariable, Message: "no variables were supplied with this request"}
}

func errUnexpectedStructure(msg string) *Error {
	return &Error{Kind: UnexpectedStructure, Message: msg}
}

func errNestedFieldNotOfCompositeType(column string) *Error {
	return newError(NestedFieldNotOfCompositeType, "column %s is not of composite type", column)
}

func errNestedFieldNotOfArrayType(column string) *Error {
	return newError(NestedFieldNotOfArrayType, "column %s is not of array type", column)
}

func errNestedArraysNotSupported(column string) *Error {
	return newError(NestedArraysNotSupported, "column %s is an array of arrays, which is not supported", column)
}

func errColumnIsGenerated(column string) *Error {
	return newError(ColumnIsGenerated, "column %s is a generated column and cannot be written to", column)
}

func errColumnIsIdentityAlways(column string) *Error {
	return newError(ColumnIsIdentityAlways, "column %s is GENERATED ALWAYS AS IDENTITY and cannot be written to", column)
}

func errMissingColumnInInsert(column string) *Error {
	return newError(MissingColumnInInsert, "column %s is required and was not supplied", column)
}

func errCapabilityNotSupported(name string) *Error {
	return newError(CapabilityNotSupported, "capability not supported: %s", name)
}

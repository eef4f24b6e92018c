package server

import (
	"errors"
	"net/http"

	"github.com/hasura/ndc-postgres-go/internal/translate"
)

// statusForError maps a translate.Error's Kind to the HTTP status spec §7
// names: schema-level problems (unknown collection/column/operator/
// relationship, bad arguments) are 422, capability-not-supported is 501,
// malformed input is 400, everything else (database I/O, connection
// failure, a bare Go error the translator never produced) is 500.
func statusForError(err error) int {
	var terr *translate.Error
	if !errors.As(err, &terr) {
		return http.StatusInternalServerError
	}

	switch terr.Kind {
	case translate.CollectionNotFound,
		translate.ColumnNotFoundInCollection,
		translate.RelationshipNotFound,
		translate.OperatorNotFound,
		translate.ProcedureNotFound,
		translate.ArgumentNotFound,
		translate.ColumnIsGenerated,
		translate.ColumnIsIdentityAlways,
		translate.MissingColumnInInsert,
		translate.NestedFieldNotOfCompositeType,
		translate.NestedFieldNotOfArrayType,
		translate.NestedArraysNotSupported:
		return http.StatusUnprocessableEntity
	case translate.CapabilityNotSupported:
		return http.StatusNotImplemented
	case translate.UnexpectedVariable,
		translate.UnexpectedStructure,
		translate.UnableToDeserializeNumberAsF64:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse is the JSON body written alongside statusForError's status,
// carrying the offending identifiers translate.Error collects so a client
// can correlate the failure with its own request, per spec §7.
type errorResponse struct {
	Message string   `json:"message"`
	Names   []string `json:"names,omitempty"`
}

func newErrorResponse(err error) errorResponse {
	var terr *translate.Error
	if errors.As(err, &terr) {
		return errorResponse{Message: terr.Message, Names: terr.Names}
	}
	return errorResponse{Message: err.Error()}
}

package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator/v10"
	"github.com/hasura/ndc-postgres-go/internal/ndc"
	"github.com/hasura/ndc-postgres-go/internal/obs"
	"github.com/hasura/ndc-postgres-go/internal/translate"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
)

// Router builds the connector's full HTTP surface (spec §4.14): one route
// per NDC operation, health and metrics endpoints for operators, and the
// cross-cutting middleware (request id, CORS, compression) applied to all
// of them, using the non-v5 chi import path go.mod pins.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(obs.WithRequestID)
	r.Use(cors.AllowAll().Handler)
	r.Use(gzhttp.GzipHandler)

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/schema", s.handleSchema)
	r.Get("/capabilities", s.handleCapabilities)
	r.Post("/query", s.handleQuery)
	r.Post("/query/explain", s.handleQueryExplain)
	r.Post("/mutation", s.handleMutation)
	r.Post("/mutation/explain", s.handleMutationExplain)

	return r
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := obs.StartSpan(r.Context(), "health")
	defer span.End()

	if err := s.Pool.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMetrics reports pool utilization, the one metric an operator can't
// get from the standard Prometheus process/Go collectors, since this
// connector has no counters of its own worth a full metrics library
// (spec.md's Non-goals exclude a metrics backend; this is plain JSON).
func (s *Service) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stat := s.Pool.Stat()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pool_total_conns":    stat.TotalConns(),
		"pool_idle_conns":     stat.IdleConns(),
		"pool_acquired_conns": stat.AcquiredConns(),
	})
}

func (s *Service) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildSchemaResponse(s.Metadata()))
}

func (s *Service) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ndcCapabilities())
}

func (s *Service) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := obs.StartSpan(r.Context(), "query")
	defer span.End()

	var request ndc.QueryRequest
	if !s.decodeAndValidate(w, r, &request) {
		return
	}

	result, err := ExecuteQuery(ctx, s.Pool, s.Cache, s.Metadata(), request)
	if err != nil {
		writeTranslateError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

// handleQueryExplain renders the plan without executing it, the same
// translate.BuildQueryPlan call handleQuery makes, stopping one step short
// of ExecuteQuery's pool acquisition.
func (s *Service) handleQueryExplain(w http.ResponseWriter, r *http.Request) {
	var request ndc.QueryRequest
	if !s.decodeAndValidate(w, r, &request) {
		return
	}

	plan, err := translate.BuildQueryPlan(s.Metadata(), request)
	if err != nil {
		writeTranslateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Service) handleMutation(w http.ResponseWriter, r *http.Request) {
	ctx, span := obs.StartSpan(r.Context(), "mutation")
	defer span.End()

	var request ndc.MutationRequest
	if !s.decodeAndValidate(w, r, &request) {
		return
	}

	result, err := ExecuteMutation(ctx, s.Pool, s.Metadata(), request, s.Config.IsolationLevel)
	if err != nil {
		writeTranslateError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, result)
}

func (s *Service) handleMutationExplain(w http.ResponseWriter, r *http.Request) {
	var request ndc.MutationRequest
	if !s.decodeAndValidate(w, r, &request) {
		return
	}

	plan, err := translate.BuildMutationPlan(s.Metadata(), request, s.Config.IsolationLevel)
	if err != nil {
		writeTranslateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// decodeAndValidate decodes the request body into dest and runs
// go-playground/validator's struct tags over it, writing a 400 response
// and returning false on either failure.
func (s *Service) decodeAndValidate(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := s.validate.Struct(dest); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); !ok {
			writeError(w, http.StatusBadRequest, err)
			return false
		}
	}
	return true
}

func writeTranslateError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), newErrorResponse(err))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

package obs

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDHeader is echoed back on every response so a caller can
// correlate its own logs with the connector's.
const RequestIDHeader = "X-Request-Id"

// WithRequestID middleware stamps every inbound request with a UUIDv4,
// reusing a client-supplied X-Request-Id when present so a load balancer or
// gateway's own correlation ID survives end to end.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID reads the ID WithRequestID stamped on ctx, or "" if the
// middleware never ran (e.g. a unit test calling a handler directly).
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

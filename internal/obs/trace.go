package obs

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the one instrumentation scope every span in this connector
// is recorded under; NDC has no multi-service fan-out that needs a second
// scope name.
const TracerName = "github.com/hasura/ndc-postgres-go"

// NewTracerProvider builds an SDK tracer provider tagged with the
// connector's service name. No exporter is registered here: operators wire
// one in main via whatever collector endpoint their deployment uses, rather
// than hardcoding one into the library.
func NewTracerProvider(serviceName string, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	allOpts := append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)
	return sdktrace.NewTracerProvider(allOpts...)
}

// StartSpan starts a span under the shared TracerName scope, the one call
// internal/server's handlers and db layer use rather than threading a
// *trace.Tracer value through every function signature.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, name)
}

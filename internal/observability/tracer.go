// Package observability provides an optional trace/span scope around AI
// capability calls. The default implementation is a no-op; a logging tracer
// can be enabled from config. Tracer failures must never fail the wrapped
// call, so implementations are expected to swallow their own errors.
package observability

import (
	"context"
	"time"
)

// EndFunc closes a trace or span scope. The error describes the outcome of
// the wrapped operation, not of the tracer itself.
type EndFunc func(err error)

// Tracer opens trace and span scopes with optional key/value metadata.
type Tracer interface {
	// Trace opens a top-level scope for one capability invocation.
	Trace(ctx context.Context, name string, metadata map[string]any) (context.Context, EndFunc)
	// Span opens a nested scope under the current trace.
	Span(ctx context.Context, name string, metadata map[string]any) (context.Context, EndFunc)
}

type traceKey struct{}

// TraceName returns the name of the enclosing trace, if any.
func TraceName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(traceKey{}).(string)
	return name, ok
}

func withTraceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, traceKey{}, name)
}

// Elapsed is a small helper shared by implementations.
func elapsedMS(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

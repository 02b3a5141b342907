// Package utils holds small helpers shared by the server and the client:
// context keys, JSON response writing, the resty client wrapper and id
// generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys, preventing collisions with
// string keys set by other packages.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// TraceIDCtxKey stores the request trace id in a context.
var TraceIDCtxKey = contextKey("traceID")

// TraceIDHeader is the HTTP header carrying the trace id between client and
// server.
const TraceIDHeader = "X-Trace-ID"

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDCtxKey, traceID)
}

// GetTraceIDFromContext returns the trace id stored in ctx. ok is false when
// none is set or the stored value is not a non-empty string.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok && traceID != ""
}

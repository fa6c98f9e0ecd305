package flight

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/hugr-lab/airport-ga4/internal/reqid"
)

// Incoming call headers.
const (
	HeaderAuthorization = "authorization"
	HeaderTraceID       = "airport-trace-id"
	HeaderSessionID     = "airport-client-session-id"
	// HeaderRequestID lets a client choose the request ID of a GetFlightInfo call.
	HeaderRequestID = "airport-request-id"
)

type metaKey struct{}

// ContextMeta holds the call headers the handlers log or authenticate with.
type ContextMeta struct {
	Authorization string
	TraceID       string
	SessionID     string
}

// MetaFromContext returns the headers stored by EnrichContextMetadata, or nil.
func MetaFromContext(ctx context.Context) *ContextMeta {
	meta, _ := ctx.Value(metaKey{}).(*ContextMeta)
	return meta
}

// AuthorizationFromContext returns the raw authorization header of the call.
func AuthorizationFromContext(ctx context.Context) string {
	return metaField(ctx, func(m *ContextMeta) string { return m.Authorization })
}

// TraceIDFromContext returns the client trace ID of the call.
func TraceIDFromContext(ctx context.Context) string {
	return metaField(ctx, func(m *ContextMeta) string { return m.TraceID })
}

// SessionIDFromContext returns the client session ID of the call.
func SessionIDFromContext(ctx context.Context) string {
	return metaField(ctx, func(m *ContextMeta) string { return m.SessionID })
}

func metaField(ctx context.Context, get func(*ContextMeta) string) string {
	if meta := MetaFromContext(ctx); meta != nil {
		return get(meta)
	}
	return ""
}

// EnrichContextMetadata copies the known call headers into ctx.
// A client supplied request ID is stored with the reqid package.
// Calling it twice is a no-op.
func EnrichContextMetadata(ctx context.Context) context.Context {
	if MetaFromContext(ctx) != nil {
		return ctx
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}

	first := func(key string) string {
		if values := md.Get(key); len(values) > 0 {
			return values[0]
		}
		return ""
	}

	if id := first(HeaderRequestID); id != "" {
		ctx = reqid.WithRequestID(ctx, id)
	}
	return context.WithValue(ctx, metaKey{}, &ContextMeta{
		Authorization: first(HeaderAuthorization),
		TraceID:       first(HeaderTraceID),
		SessionID:     first(HeaderSessionID),
	})
}

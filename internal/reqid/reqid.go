// Package reqid carries per-query request IDs through contexts.
// GetFlightInfo assigns the ID, the ticket carries it, and DoGet restores it
// so both halves of a query log under the same ID.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// key is the unexported context key for request ID.
type key struct{}

// New returns a fresh random request ID.
func New() string {
	return uuid.NewString()
}

// WithRequestID returns a new context with the request ID stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, key{}, id)
}

// FromContext retrieves the request ID if present.
// Returns ("", false) if no request ID is set.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok && id != ""
}

// Ensure returns ctx and its request ID, assigning a new ID when none is set.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := New()
	return WithRequestID(ctx, id), id
}

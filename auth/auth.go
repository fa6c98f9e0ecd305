// Package auth authenticates Flight callers with bearer tokens.
// The identity it resolves also picks the tenant scope of a query.
package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidAuthHeader = errors.New("authorization header must use Bearer scheme")
	ErrTokenIsEmpty      = errors.New("authorization token is empty")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrNoScope           = errors.New("identity has no tenant scope")
)

// Authenticator resolves a bearer token to a caller identity.
// Implementations are called concurrently.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity string, err error)
}

type anonymous struct{}

// NoAuth accepts every call as "anonymous".
// Anonymous callers always get the default scope.
func NoAuth() Authenticator {
	return anonymous{}
}

func (anonymous) Authenticate(context.Context, string) (string, error) {
	return "anonymous", nil
}

type identityKey struct{}

// IdentityFromContext returns the caller identity, or "" for unauthenticated calls.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityKey{}).(string)
	return identity
}

func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// TokenFromAuthorizationHeader returns the token of a "Bearer <token>" header.
func TokenFromAuthorizationHeader(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrInvalidAuthHeader
	}
	if token == "" {
		return "", ErrTokenIsEmpty
	}
	return token, nil
}

// ValidateToken authenticates token and stores the resulting identity in ctx.
// Any Authenticator error is reported as ErrUnauthenticated.
func ValidateToken(ctx context.Context, token string, authenticator Authenticator) (context.Context, error) {
	if token == "" {
		return ctx, ErrTokenIsEmpty
	}
	identity, err := authenticator.Authenticate(ctx, token)
	if err != nil {
		return ctx, ErrUnauthenticated
	}
	return WithIdentity(ctx, identity), nil
}

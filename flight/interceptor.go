package flight

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/airport-ga4/auth"
)

// UnaryServerInterceptor creates a gRPC unary interceptor for authentication.
// Validates bearer tokens and propagates identity via context.
// If no authenticator is provided, requests pass through without auth.
func UnaryServerInterceptor(authenticator auth.Authenticator) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, err := authenticate(EnrichContextMetadata(ctx), authenticator)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor creates a gRPC stream interceptor for authentication.
// Validates bearer tokens and propagates identity via context.
// If no authenticator is provided, requests pass through without auth.
func StreamServerInterceptor(authenticator auth.Authenticator) grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, err := authenticate(EnrichContextMetadata(ss.Context()), authenticator)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

func authenticate(ctx context.Context, authenticator auth.Authenticator) (context.Context, error) {
	if authenticator == nil {
		return ctx, nil
	}

	token, err := auth.TokenFromAuthorizationHeader(AuthorizationFromContext(ctx))
	if err != nil {
		return ctx, status.Error(codes.Unauthenticated, err.Error())
	}

	ctx, err = auth.ValidateToken(ctx, token, authenticator)
	if err != nil {
		return ctx, status.Error(codes.Unauthenticated, err.Error())
	}
	return ctx, nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapper's custom context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

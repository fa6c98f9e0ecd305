package ga4

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/airport-ga4/flight"
)

// NewServer registers the Flight service on the provided gRPC server.
// This is the main entry point for the ga4 package.
//
// The function:
//  1. Validates the Config and creates the Connector
//  2. Creates Flight service implementation
//  3. Registers it on grpcServer
//
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
//
// For authentication, use ServerOptions() to create the gRPC server:
//
//	config := ga4.Config{
//	    PropertyID: "1234",
//	    Scope:      report.Scope{Dimension: "hostName", Value: "example.com"},
//	    Auth:       ga4.BearerAuth(validateToken),
//	}
//	grpcServer := grpc.NewServer(ga4.ServerOptions(config)...)
//	if _, err := ga4.NewServer(ctx, grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":50051")
//	grpcServer.Serve(lis)
func NewServer(ctx context.Context, grpcServer *grpc.Server, config Config) (*Connector, error) {
	connector, err := NewConnector(ctx, config)
	if err != nil {
		return nil, err
	}

	allocator := config.Allocator
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}

	flightServer := flight.NewServer(connector, allocator, connector.logger, config.Address)
	flight.RegisterFlightServer(grpcServer, flightServer)

	connector.logger.Info("GA4 Flight server registered",
		"property", connector.property,
		"scope_dimension", config.Scope.Dimension,
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
	)

	return connector, nil
}

// ServerOptions returns gRPC server options with authentication interceptors
// and message size limits taken from config.
func ServerOptions(config Config) []grpc.ServerOption {
	var opts []grpc.ServerOption

	// Interceptors always run: they also collect request metadata.
	opts = append(opts,
		grpc.UnaryInterceptor(flight.UnaryServerInterceptor(config.Auth)),
		grpc.StreamInterceptor(flight.StreamServerInterceptor(config.Auth)),
	)

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}

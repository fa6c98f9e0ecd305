// Package flight serves analytics queries over Arrow Flight.
//
// A client sends a JSON query as a CMD descriptor to GetFlightInfo, which
// plans the query (failing fast on translation errors) and answers with the
// result schema and a ticket. DoGet redeems the ticket, runs the query and
// streams the rows as a single record batch.
package flight

import (
	"context"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/airport-ga4/report"
)

// Engine plans and runs analytics queries.
// Implementations MUST be goroutine-safe.
type Engine interface {
	// Plan translates a query without contacting the upstream API.
	Plan(ctx context.Context, q *report.Query) (*report.Plan, error)
	// Query translates and executes a query.
	Query(ctx context.Context, q *report.Query) (*report.Result, error)
}

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	engine    Engine
	allocator memory.Allocator
	logger    *slog.Logger
	address   string // Server's public address for FlightEndpoint locations
}

// NewServer creates a new Flight server backed by engine.
// The address parameter specifies the server's public address for FlightEndpoint locations.
func NewServer(engine Engine, allocator memory.Allocator, logger *slog.Logger, address string) *Server {
	if allocator == nil {
		allocator = memory.DefaultAllocator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    engine,
		allocator: allocator,
		logger:    logger,
		address:   address,
	}
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}

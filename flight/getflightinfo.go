package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/airport-ga4/internal/reqid"
	"github.com/hugr-lab/airport-ga4/report"
)

// GetFlightInfo plans a query and returns its result schema and a ticket.
//
// The descriptor must be CMD type with a JSON query document as the command.
// Translation errors are returned here, before any upstream call.
// Returns FlightInfo with:
//   - Schema: one nullable utf8 field per selected column, sorted by name
//   - Endpoints: single endpoint whose ticket carries the query
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	ctx, requestID := reqid.Ensure(EnrichContextMetadata(ctx))

	s.logger.Debug("GetFlightInfo called",
		"request_id", requestID,
		"trace_id", TraceIDFromContext(ctx),
		"session_id", SessionIDFromContext(ctx),
		"type", desc.GetType(),
		"cmd_size", len(desc.GetCmd()),
	)

	schema, err := s.plan(ctx, desc)
	if err != nil {
		return nil, err
	}

	ticket, err := EncodeTicket(requestID, desc.GetCmd())
	if err != nil {
		s.logger.Error("Failed to encode ticket",
			"request_id", requestID,
			"error", err,
		)
		return nil, status.Errorf(codes.Internal, "failed to encode ticket: %v", err)
	}

	endpoint := &flight.FlightEndpoint{
		Ticket: &flight.Ticket{Ticket: ticket},
	}
	if s.address != "" {
		endpoint.Location = []*flight.Location{{Uri: "grpc://" + s.address}}
	}

	s.logger.Debug("GetFlightInfo successful",
		"request_id", requestID,
		"num_fields", schema.NumFields(),
	)

	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(schema, s.allocator),
		FlightDescriptor: desc,
		Endpoint:         []*flight.FlightEndpoint{endpoint},
		TotalRecords:     -1, // Unknown until the report runs
		TotalBytes:       -1,
	}, nil
}

// GetSchema plans a query and returns its result schema without a ticket.
func (s *Server) GetSchema(ctx context.Context, desc *flight.FlightDescriptor) (*flight.SchemaResult, error) {
	ctx, _ = reqid.Ensure(EnrichContextMetadata(ctx))

	schema, err := s.plan(ctx, desc)
	if err != nil {
		return nil, err
	}
	return &flight.SchemaResult{Schema: flight.SerializeSchema(schema, s.allocator)}, nil
}

func (s *Server) plan(ctx context.Context, desc *flight.FlightDescriptor) (*arrow.Schema, error) {
	if desc.GetType() != flight.DescriptorCMD {
		return nil, status.Error(codes.InvalidArgument, "descriptor must be CMD type carrying a JSON query")
	}

	query, err := report.ParseQuery(desc.GetCmd())
	if err != nil {
		return nil, StatusError(err)
	}

	plan, err := s.engine.Plan(ctx, query)
	if err != nil {
		s.logger.Debug("Query planning failed", "error", err)
		return nil, StatusError(err)
	}
	return RecordSchema(plan.Columns()), nil
}

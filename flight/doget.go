package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/airport-ga4/internal/recovery"
	"github.com/hugr-lab/airport-ga4/internal/reqid"
	"github.com/hugr-lab/airport-ga4/report"
)

// DoGet runs the query carried by a ticket and streams the result.
//
// The ticket must come from GetFlightInfo. The handler:
//  1. Decodes the ticket and restores its request ID
//  2. Runs the query through the engine
//  3. Streams the rows as one record batch using Arrow IPC format
//
// The query is fully validated and its response mapped before the first
// byte is written, so a failed query never produces a partial stream.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContextMetadata(stream.Context())

	s.logger.Debug("DoGet called",
		"trace_id", TraceIDFromContext(ctx),
		"session_id", SessionIDFromContext(ctx),
		"ticket_size", len(ticket.GetTicket()),
	)

	ticketData, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		s.logger.Error("Failed to decode ticket", "error", err)
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}
	if ticketData.RequestID != "" {
		ctx = reqid.WithRequestID(ctx, ticketData.RequestID)
	}

	query, err := report.ParseQuery(ticketData.Query)
	if err != nil {
		return StatusError(err)
	}

	result, err := s.engine.Query(ctx, query)
	if err != nil {
		s.logger.Debug("Query failed",
			"request_id", ticketData.RequestID,
			"error", err,
		)
		return StatusError(err)
	}

	if err := ctx.Err(); err != nil {
		return status.Error(codes.Canceled, "request cancelled")
	}

	schema := RecordSchema(result.Plan.Columns())
	return recovery.RecoverToError(s.logger, "DoGet", func() error {
		record := BuildRecord(s.allocator, schema, result.Rows)
		defer record.Release()

		writer := flight.NewRecordWriter(stream, ipc.WithSchema(schema), ipc.WithAllocator(s.allocator))
		defer writer.Close()

		if err := writer.Write(record); err != nil {
			s.logger.Error("Failed to write record batch",
				"request_id", result.RequestID,
				"error", err,
			)
			return status.Errorf(codes.Internal, "failed to write batch: %v", err)
		}

		s.logger.Debug("DoGet completed successfully",
			"request_id", result.RequestID,
			"total_rows", record.NumRows(),
		)
		return nil
	})
}

package flight

import (
	"errors"
	"fmt"

	"github.com/hugr-lab/airport-ga4/internal/serialize"
)

// TicketVersion is the current ticket layout version.
const TicketVersion = 1

// ErrInvalidTicket is wrapped by every ticket decoding failure.
var ErrInvalidTicket = errors.New("invalid ticket")

// TicketData is the decoded content of a Flight ticket.
// Tickets are opaque to clients: MessagePack encoded, then zstd compressed.
type TicketData struct {
	Version int `msgpack:"v"`

	// RequestID links the DoGet call to the GetFlightInfo call that issued the ticket.
	RequestID string `msgpack:"request_id"`

	// Query is the JSON query document as received in the descriptor.
	Query []byte `msgpack:"query"`
}

// EncodeTicket creates an opaque ticket for a planned query.
func EncodeTicket(requestID string, query []byte) ([]byte, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidTicket)
	}

	data, err := serialize.Pack(TicketData{
		Version:   TicketVersion,
		RequestID: requestID,
		Query:     query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return data, nil
}

// DecodeTicket parses an opaque ticket.
// Returns an error wrapping ErrInvalidTicket if the ticket is malformed,
// has an unknown version or carries no query.
func DecodeTicket(ticketBytes []byte) (*TicketData, error) {
	if len(ticketBytes) == 0 {
		return nil, fmt.Errorf("%w: ticket cannot be empty", ErrInvalidTicket)
	}

	var ticket TicketData
	if err := serialize.Unpack(ticketBytes, &ticket); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	if ticket.Version != TicketVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidTicket, ticket.Version)
	}
	if len(ticket.Query) == 0 {
		return nil, fmt.Errorf("%w: decoded ticket has no query", ErrInvalidTicket)
	}

	return &ticket, nil
}

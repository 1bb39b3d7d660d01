package flight

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/goccy/go-json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/result"
)

// GetFlightInfo returns the result schema and a ticket for a request.
//
// The descriptor must be CMD type with a JSON-encoded aggql.Request as Cmd.
// The request is compiled to SQL first when it carries a catalog, so that
// invalid requests fail here rather than in DoGet.
func (s *Server) GetFlightInfo(ctx context.Context, desc *flight.FlightDescriptor) (*flight.FlightInfo, error) {
	s.logger.Debug("GetFlightInfo called",
		"request_id", RequestIDFromContext(ctx),
		"type", desc.GetType(),
		"cmd_length", len(desc.GetCmd()),
	)

	if desc.GetType() != flight.DescriptorCMD {
		return nil, status.Error(codes.InvalidArgument, "descriptor must be CMD type")
	}

	var req aggql.Request
	if err := json.Unmarshal(desc.GetCmd(), &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	if len(req.Catalog) > 0 {
		if _, err := s.compiler.SQL(req); err != nil {
			return nil, toStatus(err, "compile failed")
		}
	}

	idx, err := s.compiler.Index(req)
	if err != nil {
		return nil, toStatus(err, "invalid request")
	}
	schema := (&result.AggregateResult{Index: idx}).Schema()

	ticket, err := EncodeTicket(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "failed to create ticket: %v", err)
	}

	return &flight.FlightInfo{
		Schema:           flight.SerializeSchema(schema, s.allocator),
		FlightDescriptor: desc,
		Endpoint: []*flight.FlightEndpoint{
			{Ticket: &flight.Ticket{Ticket: ticket}},
		},
		TotalRecords: -1,
		TotalBytes:   -1,
	}, nil
}

package flight

import (
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/aggql/internal/recovery"
)

// DoGet executes the request encoded in the ticket and streams the result.
// The whole result is sent as a single record batch.
func (s *Server) DoGet(ticket *flight.Ticket, stream flight.FlightService_DoGetServer) error {
	ctx := EnrichContext(stream.Context())
	requestID := RequestIDFromContext(ctx)

	if s.executor == nil {
		return status.Error(codes.Unimplemented, "server has no executor")
	}

	req, err := DecodeTicket(ticket.GetTicket())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid ticket: %v", err)
	}

	s.logger.Debug("DoGet called",
		"request_id", requestID,
		"table", req.Table,
		"subquery", req.HasSubQuery,
	)

	return recovery.RecoverToError(s.logger, "DoGet", func() error {
		res, err := s.compiler.Run(ctx, s.executor, req)
		if err != nil {
			s.logger.Error("Failed to run request",
				"request_id", requestID,
				"table", req.Table,
				"error", err,
			)
			return toStatus(err, "run failed")
		}

		record := res.RecordBatch(s.allocator)
		defer record.Release()

		writer := flight.NewRecordWriter(stream, ipc.WithSchema(record.Schema()))
		defer writer.Close()

		if err := writer.Write(record); err != nil {
			return status.Errorf(codes.Internal, "failed to write record: %v", err)
		}

		s.logger.Debug("DoGet completed",
			"request_id", requestID,
			"rows", res.Len(),
		)
		return nil
	})
}

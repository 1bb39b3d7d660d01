package flight

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/agg"
	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/filter"
)

// statusCode classifies a compiler or executor error.
// Request errors are InvalidArgument, everything else is Internal.
func statusCode(err error) codes.Code {
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}

	var (
		lookupErr   *catalog.LookupError
		operatorErr *filter.UnsupportedOperatorError
		literalErr  *filter.LiteralError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.As(err, &lookupErr),
		errors.As(err, &operatorErr),
		errors.As(err, &literalErr),
		errors.Is(err, agg.ErrEmptySelect),
		errors.Is(err, agg.ErrMissingTable),
		errors.Is(err, aggql.ErrInvalidRequest):
		return codes.InvalidArgument
	}
	return codes.Internal
}

// toStatus converts err to a gRPC status error with the given message prefix.
func toStatus(err error, msg string) error {
	return status.Errorf(statusCode(err), "%s: %v", msg, err)
}

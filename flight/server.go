// Package flight serves aggregation requests over Arrow Flight.
//
// DoGet executes a ticket and streams the decoded result as one record batch.
// DoAction compiles a request without executing it. GetFlightInfo returns the
// result schema and a ticket for a request passed as a CMD descriptor.
package flight

import (
	"errors"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"google.golang.org/grpc"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/auth"
)

// ErrNoCompiler is returned by NewServer when the config has no compiler.
var ErrNoCompiler = errors.New("flight server requires a compiler")

// ServerConfig configures a Server.
type ServerConfig struct {
	// Compiler compiles requests. Required.
	Compiler *aggql.Compiler

	// Executor runs compiled statements for DoGet.
	// OPTIONAL: If nil, DoGet returns Unimplemented and only actions are served.
	Executor aggql.Executor

	// Allocator for result record batches.
	// OPTIONAL: Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger for request logging.
	// OPTIONAL: Defaults to the compiler logger.
	Logger *slog.Logger

	// Authenticator validates bearer tokens of every call.
	// OPTIONAL: If nil, calls are not authenticated.
	Authenticator auth.Authenticator
}

// Server implements the Flight service handlers.
// Embeds BaseFlightServer for forward compatibility with protocol changes.
type Server struct {
	flight.BaseFlightServer

	compiler  *aggql.Compiler
	executor  aggql.Executor
	allocator memory.Allocator
	logger    *slog.Logger
	auth      auth.Authenticator
}

// NewServer creates a Flight server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Compiler == nil {
		return nil, ErrNoCompiler
	}
	s := &Server{
		compiler:  config.Compiler,
		executor:  config.Executor,
		allocator: config.Allocator,
		logger:    config.Logger,
		auth:      config.Authenticator,
	}
	if s.allocator == nil {
		s.allocator = memory.DefaultAllocator
	}
	if s.logger == nil {
		s.logger = config.Compiler.Logger()
	}
	return s, nil
}

// RegisterFlightServer registers the Flight service on the provided gRPC server.
func RegisterFlightServer(grpcServer *grpc.Server, flightServer *Server) {
	flight.RegisterFlightServiceServer(grpcServer, flightServer)
}

// NewGRPCServer creates a gRPC server with the request logging and
// authentication interceptors and the Flight service registered.
func NewGRPCServer(flightServer *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(flightServer.logger, flightServer.auth)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(flightServer.logger, flightServer.auth)),
	)
	grpcServer := grpc.NewServer(opts...)
	RegisterFlightServer(grpcServer, flightServer)
	return grpcServer
}

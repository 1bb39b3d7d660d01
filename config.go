package aggql

import (
	"errors"
	"log/slog"

	"github.com/hugr-lab/aggql/filter"
)

// Config contains configuration for a Compiler.
type Config struct {
	// Logger for internal logging.
	// OPTIONAL: If nil, a text logger on stderr is created at LogLevel.
	Logger *slog.Logger

	// LogLevel sets the logging level of the created logger.
	// OPTIONAL: If nil, uses Info level.
	// If Logger is also provided, LogLevel is ignored (use pre-configured logger).
	LogLevel *slog.Level

	// SubqueryAlias names derived tables for requests with HasSubQuery.
	// OPTIONAL: Defaults to "agg_view".
	SubqueryAlias string

	// Encoder configures column rendering for every request.
	// OPTIONAL: If nil, column names are emitted verbatim.
	Encoder *filter.EncoderOptions

	// BucketSize is the terms bucket size of DSL search bodies.
	// OPTIONAL: If 0, uses 10000.
	BucketSize int
}

// Standard errors returned by the aggql package.
var (
	// ErrInvalidConfig indicates Config validation failed.
	ErrInvalidConfig = errors.New("invalid compiler config")

	// ErrInvalidRequest indicates a Request could not be converted to a query.
	ErrInvalidRequest = errors.New("invalid request")
)

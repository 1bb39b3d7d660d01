package aggql

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hugr-lab/aggql/agg"
	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/filter"
	"github.com/hugr-lab/aggql/internal/recovery"
	"github.com/hugr-lab/aggql/result"
)

// Compiler compiles requests to SQL or DSL documents and runs them through an Executor.
// It holds no per-request state and is safe for concurrent use.
type Compiler struct {
	logger *slog.Logger
	config Config
}

// New creates a Compiler.
//
// Example:
//
//	c, err := aggql.New(aggql.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	query, err := c.SQL(req)
func New(config Config) (*Compiler, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	logger := config.Logger
	if logger == nil {
		level := slog.LevelInfo
		if config.LogLevel != nil {
			level = *config.LogLevel
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	return &Compiler{logger: logger, config: config}, nil
}

func validateConfig(config Config) error {
	if config.BucketSize < 0 {
		return fmt.Errorf("bucket size must not be negative")
	}
	return nil
}

// Logger returns the compiler logger.
func (c *Compiler) Logger() *slog.Logger { return c.logger }

func (c *Compiler) options(req Request) agg.Options {
	return agg.Options{
		Table:         req.Table,
		HasSubQuery:   req.HasSubQuery,
		SubqueryAlias: c.config.SubqueryAlias,
		Encoder:       c.config.Encoder,
		BucketSize:    c.config.BucketSize,
	}
}

// SQL compiles the request to a SQL statement using the request catalog.
func (c *Compiler) SQL(req Request) (string, error) {
	cat, err := req.ColumnTypes()
	if err != nil {
		return "", err
	}
	return c.compileSQL(req, cat)
}

func (c *Compiler) compileSQL(req Request, cat *catalog.ColumnTypes) (string, error) {
	cfg, err := req.AggConfig()
	if err != nil {
		return "", err
	}
	query, err := agg.BuildSQL(cfg, cat, c.options(req))
	if err != nil {
		return "", err
	}
	c.logger.Debug("Compiled SQL", "table", req.Table, "sql", query)
	return query, nil
}

// DimensionValues compiles a query listing the members of one column under the request filters.
func (c *Compiler) DimensionValues(req Request, column string) (string, error) {
	cfg, err := req.AggConfig()
	if err != nil {
		return "", err
	}
	cat, err := req.ColumnTypes()
	if err != nil {
		return "", err
	}
	return agg.BuildDimensionValuesSQL(cfg, column, cat, c.options(req))
}

// DSL compiles the request filters to a bool query. The catalog is optional.
func (c *Compiler) DSL(req Request) (filter.Document, error) {
	cfg, err := req.AggConfig()
	if err != nil {
		return nil, err
	}
	cat, err := req.ColumnTypes()
	if err != nil {
		return nil, err
	}
	doc, err := agg.BuildDSL(cfg, cat, c.options(req))
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Compiled DSL query", "table", req.Table, "typed", cat != nil)
	return doc, nil
}

// Search compiles the request to a complete search body with aggregations.
func (c *Compiler) Search(req Request) (filter.Document, error) {
	cfg, err := req.AggConfig()
	if err != nil {
		return nil, err
	}
	cat, err := req.ColumnTypes()
	if err != nil {
		return nil, err
	}
	return agg.BuildSearch(cfg, cat, c.options(req))
}

// Index returns the result layout of the request: one entry per dimension and value.
func (c *Compiler) Index(req Request) ([]result.ColumnIndex, error) {
	cfg, err := req.AggConfig()
	if err != nil {
		return nil, err
	}
	return c.index(cfg), nil
}

func (c *Compiler) index(cfg agg.AggConfig) []result.ColumnIndex {
	return result.BuildIndexWith(cfg, filter.NewRenderer(nil, c.config.Encoder).ColumnRef)
}

// Run compiles the request, executes it and decodes the rows.
// Without a request catalog, the column types come from exec when it implements Describer.
// Panics inside exec are returned as errors.
func (c *Compiler) Run(ctx context.Context, exec Executor, req Request) (*result.AggregateResult, error) {
	if exec == nil {
		return nil, fmt.Errorf("%w: nil executor", ErrInvalidRequest)
	}
	cfg, err := req.AggConfig()
	if err != nil {
		return nil, err
	}
	cat, err := req.ColumnTypes()
	if err != nil {
		return nil, err
	}
	if cat == nil {
		if d, ok := exec.(Describer); ok && req.Table != "" {
			cat, err = recovery.RecoverToValue(c.logger, "Describe", func() (*catalog.ColumnTypes, error) {
				return d.Describe(ctx, req.source())
			})
			if err != nil {
				return nil, fmt.Errorf("describe %s: %w", req.Table, err)
			}
		}
	}

	query, err := c.compileSQL(req, cat)
	if err != nil {
		return nil, err
	}

	rows, err := recovery.RecoverToValue(c.logger, "Execute", func() (*result.Rows, error) {
		return exec.Execute(ctx, query)
	})
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	res, err := result.DecodeIndex(c.index(cfg), rows)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("Decoded result", "rows", res.Len(), "width", result.Width(res.Index))
	return res, nil
}

package aggql

import (
	"context"

	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/result"
)

// Executor runs a compiled SQL statement.
// Each returned row must have the width of the statement's SELECT list.
type Executor interface {
	Execute(ctx context.Context, query string) (*result.Rows, error)
}

// Describer reports the column types of a table or subquery.
// Run uses it when a request carries no catalog.
type Describer interface {
	Describe(ctx context.Context, table string) (*catalog.ColumnTypes, error)
}

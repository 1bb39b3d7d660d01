package agg

import (
	"errors"
	"strings"

	"github.com/hugr-lab/aggql/filter"
)

var (
	// ErrEmptySelect is returned when a config has neither dimensions nor values.
	ErrEmptySelect = errors.New("aggregation has no dimensions and no values")

	// ErrMissingTable is returned when no table or subquery is given.
	ErrMissingTable = errors.New("table name is required")
)

// AggConfig describes one aggregation query.
// It is read by the compilers and never modified.
type AggConfig struct {
	Rows    []*filter.Dimension
	Columns []*filter.Dimension
	Filters []filter.Node
	Values  []ValueConfig
}

// Dimensions returns the group keys in SELECT order: columns, then rows.
func (c AggConfig) Dimensions() []*filter.Dimension {
	out := make([]*filter.Dimension, 0, len(c.Columns)+len(c.Rows))
	out = append(out, c.Columns...)
	return append(out, c.Rows...)
}

// Predicates returns every node that can filter the query, in WHERE order:
// rows, then columns, then filters.
func (c AggConfig) Predicates() []filter.Node {
	out := make([]filter.Node, 0, len(c.Rows)+len(c.Columns)+len(c.Filters))
	for _, d := range c.Rows {
		out = append(out, d)
	}
	for _, d := range c.Columns {
		out = append(out, d)
	}
	return append(out, c.Filters...)
}

// AggType is an aggregate function name.
type AggType string

const (
	Sum      AggType = "sum"
	Avg      AggType = "avg"
	Max      AggType = "max"
	Min      AggType = "min"
	Distinct AggType = "distinct"
	Count    AggType = "count"
)

// Normalize returns the canonical aggregate. Empty and unknown names become Count.
func (t AggType) Normalize() AggType {
	switch a := AggType(strings.ToLower(strings.TrimSpace(string(t)))); a {
	case Sum, Avg, Max, Min, Distinct, Count:
		return a
	}
	return Count
}

// Expression renders the aggregate over a column expression.
func (t AggType) Expression(column string) string {
	switch t.Normalize() {
	case Sum:
		return "SUM(" + column + ")"
	case Avg:
		return "AVG(" + column + ")"
	case Max:
		return "MAX(" + column + ")"
	case Min:
		return "MIN(" + column + ")"
	case Distinct:
		return "COUNT(DISTINCT " + column + ")"
	}
	return "COUNT(" + column + ")"
}

// ValueConfig is one aggregated output column.
type ValueConfig struct {
	Column  string  `json:"column" yaml:"column" msgpack:"column"`
	AggType AggType `json:"aggType,omitempty" yaml:"aggType,omitempty" msgpack:"aggType,omitempty"`
}

// RenderAggregate renders the value as an aggregate expression, e.g. SUM(amount).
func RenderAggregate(v ValueConfig) string {
	return v.AggType.Expression(v.Column)
}

// Options controls statement assembly.
type Options struct {
	// Table is a table name, or a subquery when HasSubQuery is set.
	Table string

	// HasSubQuery renders Table as a derived table: FROM (<Table>) <SubqueryAlias>.
	HasSubQuery bool

	// SubqueryAlias names the derived table. Default: "agg_view".
	SubqueryAlias string

	// Encoder configures column rendering. Optional.
	Encoder *filter.EncoderOptions

	// BucketSize is the terms bucket size of DSL search bodies. Default: 10000.
	BucketSize int
}

// DefaultSubqueryAlias is the derived table alias used when Options.SubqueryAlias is empty.
const DefaultSubqueryAlias = "agg_view"

const defaultBucketSize = 10000

func (o Options) from() (string, error) {
	table := strings.TrimSpace(o.Table)
	if table == "" {
		return "", ErrMissingTable
	}
	if !o.HasSubQuery {
		return table, nil
	}
	alias := o.SubqueryAlias
	if strings.TrimSpace(alias) == "" {
		alias = DefaultSubqueryAlias
	}
	return "(" + table + ") " + alias, nil
}

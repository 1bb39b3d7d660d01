package agg

import (
	"fmt"
	"strings"

	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/filter"
)

// BuildSQL compiles the config to a SELECT ... FROM ... [WHERE ...] [GROUP BY ...] statement.
//
// The SELECT list holds the dimension columns (columns, then rows) with
// duplicates removed, followed by one aggregate per value. GROUP BY is emitted
// only when there is at least one dimension.
func BuildSQL(cfg AggConfig, cat *catalog.ColumnTypes, opts Options) (string, error) {
	from, err := opts.from()
	if err != nil {
		return "", err
	}
	enc := filter.NewSQLEncoder(cat, opts.Encoder)
	r := enc.Renderer()

	dims := distinctColumns(r, cfg.Dimensions())
	aggs := make([]string, 0, len(cfg.Values))
	for _, v := range cfg.Values {
		aggs = append(aggs, v.AggType.Expression(r.Column(v.Column)))
	}
	if len(dims) == 0 && len(aggs) == 0 {
		return "", ErrEmptySelect
	}

	where, err := enc.EncodeWhere(cfg.Predicates())
	if err != nil {
		return "", fmt.Errorf("compile filters: %w", err)
	}

	return assemble(append(dims, aggs...), from, where, dims), nil
}

// BuildDimensionValuesSQL compiles a query listing the distinct members of one column.
// Every predicate applies except those that only constrain the listed column,
// so a drill-down list is not narrowed by its own selection.
func BuildDimensionValuesSQL(cfg AggConfig, column string, cat *catalog.ColumnTypes, opts Options) (string, error) {
	if strings.TrimSpace(column) == "" {
		return "", ErrEmptySelect
	}
	from, err := opts.from()
	if err != nil {
		return "", err
	}
	enc := filter.NewSQLEncoder(cat, opts.Encoder)

	var preds []filter.Node
	for _, n := range cfg.Predicates() {
		if !constrainsOnly(n, column) {
			preds = append(preds, n)
		}
	}
	where, err := enc.EncodeWhere(preds)
	if err != nil {
		return "", fmt.Errorf("compile filters: %w", err)
	}

	col := []string{enc.Renderer().Column(column)}
	return assemble(col, from, where, col), nil
}

func assemble(selectList []string, from, where string, groupBy []string) string {
	parts := []string{"SELECT " + strings.Join(selectList, ", "), "FROM " + from}
	if where != "" {
		parts = append(parts, where)
	}
	if len(groupBy) > 0 {
		parts = append(parts, "GROUP BY "+strings.Join(groupBy, ", "))
	}
	return strings.Join(parts, " ")
}

// distinctColumns renders dimension columns, dropping repeats of the same rendered text.
func distinctColumns(r *filter.Renderer, dims []*filter.Dimension) []string {
	seen := make(map[string]struct{}, len(dims))
	out := make([]string, 0, len(dims))
	for _, d := range dims {
		if d == nil {
			continue
		}
		col := r.ColumnRef(d)
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		out = append(out, col)
	}
	return out
}

// constrainsOnly reports whether every leaf under n is on the given column.
func constrainsOnly(n filter.Node, column string) bool {
	switch n := n.(type) {
	case *filter.Dimension:
		return n != nil && strings.EqualFold(n.ColumnName, column)
	case *filter.Composite:
		if n == nil || len(n.Nodes) == 0 {
			return false
		}
		for _, child := range n.Nodes {
			if !constrainsOnly(child, column) {
				return false
			}
		}
		return true
	}
	return false
}

// Package agg compiles aggregation requests to SQL statements and DSL search bodies.
//
// An AggConfig names the dimensions to group by (columns, then rows), the
// filter tree and the aggregated values:
//
//	cfg := agg.AggConfig{
//	    Columns: []*filter.Dimension{{ColumnName: "year"}},
//	    Rows:    []*filter.Dimension{{ColumnName: "region", FilterType: "=", Values: []string{"EU"}}},
//	    Values:  []agg.ValueConfig{{Column: "amount", AggType: agg.Sum}},
//	}
//
//	sql, err := agg.BuildSQL(cfg, cat, agg.Options{Table: "sales"})
//	// SELECT year, region, SUM(amount) FROM sales WHERE region IN ('EU') GROUP BY year, region
//
// Dimensions that carry values filter the query as well as grouping it.
// The SELECT list order matches the index built by package result.
package agg

// Package aggql compiles declarative aggregation requests into SQL statements
// or Elasticsearch-style DSL documents, and decodes executed rows into an
// AggregateResult addressable by dimension and value.
//
// The aggql package ties the building blocks together:
//   - catalog: case-insensitive column type catalogs used for literal quoting
//   - filter: the filter tree, null separation, SQL and DSL encoders
//   - agg: statement and search body assembly
//   - result: row index and decoding
//
// # Quick Start
//
//	c, err := aggql.New(aggql.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	req := aggql.Request{
//	    Table: "sales",
//	    Definition: agg.Definition{
//	        Rows:   []filter.Config{{ColumnName: "region", FilterType: "=", Values: []string{"EU", "#NULL"}}},
//	        Values: []agg.ValueConfig{{Column: "amount", AggType: agg.Sum}},
//	    },
//	    Catalog: map[string]string{"region": "VARCHAR", "amount": "DECIMAL"},
//	}
//
//	query, err := c.SQL(req)
//	// SELECT region, SUM(amount) FROM sales
//	// WHERE (region IN ('EU') OR region IS NULL) GROUP BY region
//
// # Execution
//
// Run compiles, executes and decodes in one call. Any Executor works; package
// executor provides one for DuckDB:
//
//	db, _ := executor.Open("", logger)
//	res, err := c.Run(ctx, db, req)
//	for _, row := range res.Data {
//	    fmt.Println(row)
//	}
//
// When a request has no catalog and the executor implements Describer, the
// column types are read from the table itself.
//
// # Transports
//
// Package flight serves requests over Arrow Flight and package httpapi over
// HTTP. Both accept an optional auth.Authenticator for bearer tokens. The
// aggql command wraps both and compiles request files offline.
package aggql

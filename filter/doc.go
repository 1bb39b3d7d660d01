// Package filter models aggregation filter trees and compiles them to SQL
// predicates or to an Elasticsearch-style bool query.
//
// A filter tree is built from two node kinds:
//   - Dimension: a column, an operator and its literal operands
//   - Composite: an AND/OR group of child nodes
//
// The reserved literal NullSentinel ("#NULL") stands for SQL NULL. It is never
// quoted or rendered as a literal; equality against it compiles to IS NULL.
//
// # Basic Usage
//
//	cat := catalog.MustNew(map[string]catalog.TypeID{
//	    "region": catalog.TypeIDVarchar,
//	    "qty":    catalog.TypeIDInteger,
//	})
//
//	enc := filter.NewSQLEncoder(cat, nil)
//	where, err := enc.EncodeWhere([]filter.Node{
//	    &filter.Dimension{ColumnName: "region", FilterType: "=", Values: []string{"EU", filter.NullSentinel}},
//	    &filter.Dimension{ColumnName: "qty", FilterType: "[a,b)", Values: []string{"1", "5"}},
//	})
//	// WHERE (region IN ('EU') OR region IS NULL)
//	// AND (qty>=1 AND qty<5)
//
// # Null Separation
//
// SQL IN (NULL, 'x') never matches NULL rows. Normalize rewrites a leaf that
// mixes the sentinel with other values into a composite:
//   - "=" becomes (col IN (...) OR col IS NULL)
//   - "≠" becomes (col NOT IN (...) AND col IS NOT NULL)
//
// Both encoders apply Normalize before rendering. The input tree is never modified.
//
// # Operators
//
// Leaves accept "=", "≠", ">", "<", "≥", "≤" and the range forms "(a,b]",
// "[a,b)", "(a,b)", "[a,b]". ASCII aliases (eq, ne, !=, <>, >=, <=, ==) are
// accepted as well. A leaf without values is not a filter and renders to nothing.
//
// # Column Mapping
//
// EncoderOptions remaps column names or replaces them with SQL expressions:
//
//	enc := filter.NewSQLEncoder(cat, &filter.EncoderOptions{
//	    ColumnMapping: map[string]string{"region": "sales_region"},
//	})
package filter

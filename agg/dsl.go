package agg

import (
	"fmt"

	"github.com/hugr-lab/aggql/catalog"
	"github.com/hugr-lab/aggql/filter"
)

// BuildDSL compiles the predicates of the config to a bool query document.
// cat may be nil, in which case every literal is a string.
func BuildDSL(cfg AggConfig, cat *catalog.ColumnTypes, opts Options) (filter.Document, error) {
	enc := filter.NewDSLEncoder(cat, opts.Encoder)
	q, err := enc.EncodeQuery(cfg.Predicates())
	if err != nil {
		return nil, fmt.Errorf("compile filters: %w", err)
	}
	return q, nil
}

// BuildSearch compiles the config to a complete search body:
//
//	{"size": 0, "query": <BuildDSL>, "aggs": <nested terms and metric aggregations>}
//
// Each dimension (columns, then rows) nests a terms aggregation named after its
// field; the innermost level holds one metric per value, named "<aggType>_<column>".
func BuildSearch(cfg AggConfig, cat *catalog.ColumnTypes, opts Options) (filter.Document, error) {
	fields := distinctColumns(filter.NewRenderer(nil, fieldOptions(opts.Encoder)), cfg.Dimensions())
	if len(fields) == 0 && len(cfg.Values) == 0 {
		return nil, ErrEmptySelect
	}

	q, err := BuildDSL(cfg, cat, opts)
	if err != nil {
		return nil, err
	}

	r := filter.NewRenderer(nil, opts.Encoder)
	aggs := filter.Document{}
	for _, v := range cfg.Values {
		aggs[MetricName(v)] = filter.Document{metricKind(v.AggType): filter.Document{"field": r.FieldName(v.Column)}}
	}

	size := opts.BucketSize
	if size <= 0 {
		size = defaultBucketSize
	}
	for i := len(fields) - 1; i >= 0; i-- {
		bucket := filter.Document{"terms": filter.Document{"field": fields[i], "size": size}}
		if len(aggs) > 0 {
			bucket["aggs"] = aggs
		}
		aggs = filter.Document{fields[i]: bucket}
	}

	body := filter.Document{"size": 0, "query": q}
	if len(aggs) > 0 {
		body["aggs"] = aggs
	}
	return body, nil
}

// MetricName is the name of a value's metric aggregation in a search body.
func MetricName(v ValueConfig) string {
	return string(v.AggType.Normalize()) + "_" + v.Column
}

func metricKind(t AggType) string {
	switch t.Normalize() {
	case Sum:
		return "sum"
	case Avg:
		return "avg"
	case Max:
		return "max"
	case Min:
		return "min"
	case Distinct:
		return "cardinality"
	}
	return "value_count"
}

// fieldOptions keeps only the column mapping, since document fields are never SQL expressions.
func fieldOptions(opts *filter.EncoderOptions) *filter.EncoderOptions {
	if opts == nil {
		return nil
	}
	return &filter.EncoderOptions{ColumnMapping: opts.ColumnMapping}
}

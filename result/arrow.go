package result

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/aggql/filter"
)

// KindMetadataKey is the Arrow field metadata key holding the ColumnKind of a field.
const KindMetadataKey = "aggql.kind"

// Schema returns one nullable string field per row position, named after the
// first index entry at that position.
func (r *AggregateResult) Schema() *arrow.Schema {
	width := Width(r.Index)
	fields := make([]arrow.Field, width)
	set := make([]bool, width)
	for _, c := range r.Index {
		if set[c.Index] {
			continue
		}
		set[c.Index] = true
		fields[c.Index] = arrow.Field{
			Name:     c.Name,
			Type:     arrow.BinaryTypes.String,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{KindMetadataKey}, []string{c.Kind.String()}),
		}
	}
	return arrow.NewSchema(fields, nil)
}

// RecordBatch converts the result to an Arrow record batch.
// Dimension cells holding the null sentinel become Arrow nulls.
// The caller must release the returned record.
func (r *AggregateResult) RecordBatch(mem memory.Allocator) arrow.RecordBatch {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	schema := r.Schema()
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	dims := make([]bool, schema.NumFields())
	for _, c := range r.Index {
		if c.Kind.IsDimension() {
			dims[c.Index] = true
		}
	}

	for i := range schema.Fields() {
		b := builder.Field(i).(*array.StringBuilder)
		b.Reserve(len(r.Data))
		for _, row := range r.Data {
			if dims[i] && row[i] == filter.NullSentinel {
				b.AppendNull()
				continue
			}
			b.Append(row[i])
		}
	}
	return builder.NewRecordBatch()
}

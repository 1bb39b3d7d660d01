package serialize

import (
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// WriteIPC writes record batches as an Arrow IPC stream with the given schema.
func WriteIPC(w io.Writer, schema *arrow.Schema, mem memory.Allocator, records ...arrow.RecordBatch) error {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	for _, rec := range records {
		if err := writer.Write(rec); err != nil {
			_ = writer.Close()
			return fmt.Errorf("failed to write record batch: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close IPC writer: %w", err)
	}
	return nil
}

// ReadIPC reads every record batch of an Arrow IPC stream.
// The caller must release the returned records.
func ReadIPC(data []byte, mem memory.Allocator) (*arrow.Schema, []arrow.RecordBatch, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	reader, err := ipc.NewReader(bytes.NewReader(data), ipc.WithAllocator(mem))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open IPC stream: %w", err)
	}
	defer reader.Release()

	var records []arrow.RecordBatch
	for reader.Next() {
		rec := reader.Record()
		rec.Retain()
		records = append(records, rec)
	}
	if err := reader.Err(); err != nil {
		for _, rec := range records {
			rec.Release()
		}
		return nil, nil, fmt.Errorf("failed to read IPC stream: %w", err)
	}
	return reader.Schema(), records, nil
}

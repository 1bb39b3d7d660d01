package flight

import (
	"fmt"
	"sync"

	"github.com/hugr-lab/aggql"
	"github.com/hugr-lab/aggql/internal/msgpack"
	"github.com/hugr-lab/aggql/internal/serialize"
)

// codec is shared by all tickets.
var codec = sync.OnceValues(func() (*serialize.Codec, error) {
	return serialize.NewCodec(serialize.DefaultMaxDecodedSize)
})

// EncodeTicket creates an opaque ticket from a request.
// The ticket is the zstd-compressed MessagePack encoding of the request.
func EncodeTicket(req aggql.Request) ([]byte, error) {
	if req.Table == "" {
		return nil, fmt.Errorf("table cannot be empty")
	}
	c, err := codec()
	if err != nil {
		return nil, err
	}
	data, err := msgpack.Encode(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ticket: %w", err)
	}
	return c.Compress(data), nil
}

// DecodeTicket parses a ticket created by EncodeTicket.
func DecodeTicket(ticket []byte) (aggql.Request, error) {
	var req aggql.Request
	if len(ticket) == 0 {
		return req, fmt.Errorf("ticket cannot be empty")
	}
	c, err := codec()
	if err != nil {
		return req, err
	}
	data, err := c.Decompress(ticket)
	if err != nil {
		return req, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if err := msgpack.Decode(data, &req); err != nil {
		return req, fmt.Errorf("failed to decode ticket: %w", err)
	}
	if req.Table == "" {
		return req, fmt.Errorf("decoded ticket has empty table")
	}
	return req, nil
}

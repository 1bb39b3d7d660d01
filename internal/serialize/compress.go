// Package serialize provides the wire codecs of the Flight transport:
// zstd compression of tickets and Arrow IPC streams of results.
package serialize

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxDecodedSize bounds the decompressed size of a payload.
const DefaultMaxDecodedSize = 8 << 20

// ErrEmptyPayload is returned when decompressing an empty payload.
var ErrEmptyPayload = errors.New("empty payload")

// Codec compresses and decompresses payloads with ZStandard.
// EncodeAll and DecodeAll are goroutine-safe, so one Codec can be shared.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec creates a codec whose decoder refuses payloads that expand beyond
// maxDecodedSize bytes. A zero size uses DefaultMaxDecodedSize.
// Caller must call Close() when done to release resources.
func NewCodec(maxDecodedSize uint64) (*Codec, error) {
	if maxDecodedSize == 0 {
		maxDecodedSize = DefaultMaxDecodedSize
	}
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil,
		zstd.WithDecoderMaxMemory(maxDecodedSize),
		zstd.WithDecoderConcurrency(0),
	)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Compress compresses data. Empty input compresses to an empty slice.
func (c *Codec) Compress(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

// Decompress decompresses a payload produced by Compress.
func (c *Codec) Decompress(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	data, err := c.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return data, nil
}

// Close releases codec resources.
func (c *Codec) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}

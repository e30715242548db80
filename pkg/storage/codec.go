package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold keeps small payloads as plain JSON; zstd framing would
// make them larger.
const compressThreshold = 128

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Codec turns settings maps into stored bytes. Payloads of compressThreshold
// bytes or more are zstd compressed; plain JSON is always readable.
type Codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCodec constructs a Codec. It is safe for concurrent use.
func NewCodec() (*Codec, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("storage: zstd decoder: %w", err)
	}
	return &Codec{encoder: encoder, decoder: decoder}, nil
}

func (c *Codec) Encode(values map[string]any) ([]byte, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	if len(data) < compressThreshold {
		return data, nil
	}
	compressed := c.encoder.EncodeAll(data, make([]byte, 0, len(data)))
	if len(compressed) >= len(data) {
		return data, nil
	}
	return compressed, nil
}

func (c *Codec) Decode(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := c.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("storage: decompress: %w", err)
		}
		data = plain
	}
	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("storage: decode: %w", err)
	}
	return values, nil
}

// Close releases the zstd workers.
func (c *Codec) Close() error {
	c.encoder.Close()
	c.decoder.Close()
	return nil
}

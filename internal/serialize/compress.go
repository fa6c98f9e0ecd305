// Package serialize packs values into opaque byte strings: MessagePack
// encoded, then ZStandard compressed.
package serialize

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/hugr-lab/airport-ga4/internal/msgpack"
)

// MaxUnpackedSize bounds the decompressed size of a packed value.
const MaxUnpackedSize = 4 << 20

// ErrEmpty is returned when unpacking an empty byte string.
var ErrEmpty = errors.New("empty packed data")

// The shared encoder and decoder are only used through EncodeAll and
// DecodeAll, which are goroutine-safe.
var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxUnpackedSize))
	})
)

// Pack encodes v with MessagePack and compresses the result.
func Pack(v any) ([]byte, error) {
	raw, err := msgpack.Encode(v)
	if err != nil {
		return nil, err
	}

	enc, err := encoder()
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	return enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
}

// Unpack reverses Pack. v must be a pointer.
func Unpack(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}

	dec, err := decoder()
	if err != nil {
		return fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	raw, err := dec.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}
	return msgpack.Decode(raw, v)
}

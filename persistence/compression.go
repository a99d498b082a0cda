package persistence

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression selects how the snapshot body is compressed.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression. Fast; the default.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses Zstandard. Better ratio at moderate cost.
	CompressionZSTD Compression = 2
	// CompressionXZ uses XZ (LZMA2). Smallest output, slowest; for archives.
	CompressionXZ Compression = 3
)

// Valid reports whether c is a known compression.
func (c Compression) Valid() bool {
	return c <= CompressionXZ
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	case CompressionXZ:
		return "xz"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses the names returned by String.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	case "xz":
		return CompressionXZ, nil
	default:
		return 0, fmt.Errorf("persistence: unknown compression %q", s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compress returns the payload for raw and the compression actually used.
// Output that does not save at least a tenth falls back to CompressionNone.
func compress(raw []byte, c Compression) ([]byte, Compression, error) {
	if c == CompressionNone || len(raw) == 0 {
		return raw, CompressionNone, nil
	}

	var (
		out []byte
		err error
	)
	switch c {
	case CompressionLZ4:
		out, err = compressLZ4(raw)
	case CompressionZSTD:
		enc := getZstdEncoder()
		out = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	case CompressionXZ:
		out, err = compressXZ(raw)
	default:
		return nil, 0, fmt.Errorf("persistence: unknown compression %d", c)
	}
	if err != nil {
		return nil, 0, err
	}

	if len(out) == 0 || float64(len(out)) > float64(len(raw))*0.9 {
		return raw, CompressionNone, nil
	}
	return out, c, nil
}

func compressLZ4(raw []byte) ([]byte, error) {
	out := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, out, nil)
	if err != nil {
		return nil, err
	}
	// n == 0 means incompressible.
	return out[:n], nil
}

func compressXZ(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompress reverses compress. rawSize is the size recorded in the header.
func decompress(payload []byte, c Compression, rawSize uint64) ([]byte, error) {
	if c == CompressionNone {
		if uint64(len(payload)) != rawSize {
			return nil, fmt.Errorf("%w: payload has %d bytes, header says %d", ErrCorrupt, len(payload), rawSize)
		}
		return payload, nil
	}
	if rawSize > maxRawSize {
		return nil, fmt.Errorf("%w: raw size %d exceeds limit", ErrCorrupt, rawSize)
	}

	var (
		out []byte
		err error
	)
	switch c {
	case CompressionLZ4:
		out = make([]byte, rawSize)
		var n int
		n, err = lz4.UncompressBlock(payload, out)
		out = out[:max(n, 0)]
	case CompressionZSTD:
		dec := getZstdDecoder()
		out, err = dec.DecodeAll(payload, make([]byte, 0, rawSize))
		zstdDecoderPool.Put(dec)
	case CompressionXZ:
		var r *xz.Reader
		r, err = xz.NewReader(bytes.NewReader(payload))
		if err == nil {
			out, err = io.ReadAll(io.LimitReader(r, int64(rawSize)+1))
		}
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, c, err)
	}
	if uint64(len(out)) != rawSize {
		return nil, fmt.Errorf("%w: %s produced %d bytes, header says %d", ErrCorrupt, c, len(out), rawSize)
	}
	return out, nil
}

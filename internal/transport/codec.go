package transport

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// CodecKind selects the compression codec applied to an envelope's
// variable-length payload (spec_full.md §3's domain-stack table mirrors
// Kafka's per-record compression codec selection, the concern the
// teacher's snappy/lz4/klauspost-compress dependencies exist to serve).
type CodecKind uint8

const (
	CodecNone CodecKind = iota
	CodecSnappy
	CodecLZ4
	CodecZstd
)

// ParseCodecKind maps a configuration string to a CodecKind.
func ParseCodecKind(s string) (CodecKind, error) {
	switch s {
	case "", "none":
		return CodecNone, nil
	case "snappy":
		return CodecSnappy, nil
	case "lz4":
		return CodecLZ4, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecNone, errors.Newf("transport: unknown codec %q", s)
	}
}

func compress(kind CodecKind, plain []byte) ([]byte, error) {
	switch kind {
	case CodecNone:
		return plain, nil
	case CodecSnappy:
		return snappy.Encode(nil, plain), nil
	case CodecLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(plain); err != nil {
			return nil, errors.Wrap(err, "transport: lz4 compress")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(err, "transport: lz4 compress close")
		}
		return buf.Bytes(), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, errors.Wrap(err, "transport: zstd encoder")
		}
		defer enc.Close()
		return enc.EncodeAll(plain, nil), nil
	default:
		return nil, errors.Newf("transport: unknown codec %d", kind)
	}
}

func decompress(kind CodecKind, compressed []byte) ([]byte, error) {
	switch kind {
	case CodecNone:
		return compressed, nil
	case CodecSnappy:
		out, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, errors.Wrap(err, "transport: snappy decompress")
		}
		return out, nil
	case CodecLZ4:
		r := lz4.NewReader(bytes.NewReader(compressed))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, "transport: lz4 decompress")
		}
		return out, nil
	case CodecZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "transport: zstd decoder")
		}
		defer dec.Close()
		out, err := dec.DecodeAll(compressed, nil)
		if err != nil {
			return nil, errors.Wrap(err, "transport: zstd decompress")
		}
		return out, nil
	default:
		return nil, errors.Newf("transport: unknown codec %d", kind)
	}
}

package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is the compression applied to a snapshot body.
type Codec uint8

const (
	// CodecNone stores the body as is.
	CodecNone Codec = 0
	// CodecLZ4 is fast to write, good while a table is still being built.
	CodecLZ4 Codec = 1
	// CodecZSTD gives the smallest files; it is the default.
	CodecZSTD Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	}
	return fmt.Sprintf("codec(%d)", uint8(c))
}

// ParseCodec reads a codec name as used in configuration.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zstd":
		return CodecZSTD, nil
	case "lz4":
		return CodecLZ4, nil
	case "none":
		return CodecNone, nil
	}
	return CodecNone, fmt.Errorf("unknown snapshot codec %q", s)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type zstdReadCloser struct{ *zstd.Decoder }

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func newCompressor(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case CodecNone:
		return nopWriteCloser{w}, nil
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	case CodecZSTD:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		return enc, nil
	}
	return nil, fmt.Errorf("unknown snapshot codec %d", c)
}

func newDecompressor(r io.Reader, c Codec) (io.ReadCloser, error) {
	switch c {
	case CodecNone:
		return io.NopCloser(r), nil
	case CodecLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CodecZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{dec}, nil
	}
	return nil, fmt.Errorf("%w: unknown codec %d", ErrCorrupt, c)
}

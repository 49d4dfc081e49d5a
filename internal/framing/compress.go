package framing

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Compression selects transparent decompression of the input stream. It is
// applied before the file-level trim offsets, so offsets always refer to the
// uncompressed byte stream.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionGzip Compression = 1
	CompressionZstd Compression = 2
)

// CompressionForName picks a compression by filename extension. Files that
// match no known extension are read as-is.
func CompressionForName(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"), strings.HasSuffix(name, ".gzip"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZstd
	}
	return CompressionNone
}

// decompress wraps r per the compression mode. The returned size is -1 for
// compressed streams, since the uncompressed length is unknown up front.
func decompress(r io.Reader, size int64, c Compression, file string) (io.Reader, int64, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, 0, &Error{Kind: ErrIO, File: file, Msg: errors.Wrap(err, "opening gzip stream").Error()}
		}
		return zr, -1, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, 0, &Error{Kind: ErrIO, File: file, Msg: errors.Wrap(err, "opening zstd stream").Error()}
		}
		return zr.IOReadCloser(), -1, nil
	}
	return r, size, nil
}

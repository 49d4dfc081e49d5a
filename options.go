package copybook

import (
	"fmt"

	"github.com/bearlytools/copybook/internal/binary"
	"github.com/bearlytools/copybook/internal/decode"
	"github.com/bearlytools/copybook/internal/framing"
	"github.com/bearlytools/copybook/internal/segment"
)

// readerOptions is the decode-configuration bundle a Reader runs with.
type readerOptions struct {
	framing framing.Config
	decode  decode.Options
	seg     segment.Config
	// recordSize overrides the copybook's static record size for
	// fixed-length framing.
	recordSize int
}

func defaultOptions() readerOptions {
	return readerOptions{
		decode: decode.Options{TrimText: true},
	}
}

// Option configures a Reader.
type Option func(readerOptions) (readerOptions, error)

// WithFixedLength frames the stream as fixed-length records. recordSize 0
// uses the copybook's static record size.
func WithFixedLength(recordSize int) Option {
	return func(o readerOptions) (readerOptions, error) {
		if recordSize < 0 {
			return o, fmt.Errorf("record size cannot be negative")
		}
		o.framing.Format = framing.FixedLength
		o.recordSize = recordSize
		return o, nil
	}
}

// WithVariableLength frames the stream as RDW-prefixed variable records.
// headerWidth 0 uses the conventional 4 bytes. includesSelf says the header
// value counts the header's own width.
func WithVariableLength(headerWidth int, includesSelf bool) Option {
	return func(o readerOptions) (readerOptions, error) {
		if headerWidth < 0 || headerWidth > 8 {
			return o, fmt.Errorf("RDW width must be 1-8 bytes, got %d", headerWidth)
		}
		o.framing.Format = framing.VariableLength
		o.framing.HeaderWidth = headerWidth
		o.framing.HeaderIncludesSelf = includesSelf
		return o, nil
	}
}

// WithTextLines frames the stream as newline-delimited records.
func WithTextLines() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.framing.Format = framing.TextLine
		return o, nil
	}
}

// WithLittleEndianHeaders reads RDW headers little-endian instead of the
// mainframe default big-endian.
func WithLittleEndianHeaders() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.framing.HeaderOrder = binary.LittleEndian
		return o, nil
	}
}

// WithFileTrim skips start bytes at the beginning of the stream and end
// bytes at its end, before any record framing. This drops file-level control
// blocks such as tape labels.
func WithFileTrim(start, end int64) Option {
	return func(o readerOptions) (readerOptions, error) {
		if start < 0 || end < 0 {
			return o, fmt.Errorf("trim offsets cannot be negative")
		}
		o.framing.StartOffset = start
		o.framing.EndOffset = end
		return o, nil
	}
}

// WithGzip and WithZstd transparently decompress the stream before framing.
func WithGzip() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.framing.Compression = framing.CompressionGzip
		return o, nil
	}
}

func WithZstd() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.framing.Compression = framing.CompressionZstd
		return o, nil
	}
}

// WithCharset selects the DISPLAY character table by configuration name:
// "cp037" (default), "cp1047", "cp1140" or "ascii".
func WithCharset(name string) Option {
	return func(o readerOptions) (readerOptions, error) {
		cs, err := decode.ParseCharset(name)
		if err != nil {
			return o, err
		}
		o.decode.Charset = cs
		return o, nil
	}
}

// WithLittleEndianBinary decodes COMP fields little-endian.
func WithLittleEndianBinary() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.decode.Order = binary.LittleEndian
		return o, nil
	}
}

// WithStrictNulls enables the stricter null heuristics that keep valid zero
// values out of the null bucket.
func WithStrictNulls() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.decode.NullMode = decode.NullStrict
		return o, nil
	}
}

// WithStrict makes per-field decode errors fatal for their record instead of
// recorded-and-continued.
func WithStrict() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.decode.Strict = true
		return o, nil
	}
}

// WithKeepRawText keeps trailing space padding on text values.
func WithKeepRawText() Option {
	return func(o readerOptions) (readerOptions, error) {
		o.decode.TrimText = false
		return o, nil
	}
}

// WithSegments turns on multi-record-type assembly with the given
// discriminator configuration.
func WithSegments(cfg SegmentConfig) Option {
	return func(o readerOptions) (readerOptions, error) {
		if cfg.DiscriminatorField == "" {
			return o, fmt.Errorf("segment configuration needs a discriminator field name")
		}
		if len(cfg.Levels) == 0 {
			return o, fmt.Errorf("segment configuration needs at least the root level")
		}
		o.seg = cfg
		return o, nil
	}
}

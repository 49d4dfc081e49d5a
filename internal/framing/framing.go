// Package framing splits a raw byte stream into physical record buffers.
// A Framer is a single forward pass: once consumed it cannot be restarted.
// Framing knows nothing about field contents; it only honors the physical
// record format, file-level trim offsets and transparent decompression.
package framing

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/bearlytools/copybook/internal/binary"
)

//go:generate stringer -type=Format,ErrKind

// Format is the physical record format of an input file.
type Format uint8

const (
	// FixedLength files hold records of exactly Config.RecordSize bytes.
	FixedLength Format = 0
	// VariableLength files prefix every record with a fixed-width binary
	// length header (an RDW).
	VariableLength Format = 1
	// TextLine files hold newline-delimited records, used for ASCII data.
	TextLine Format = 2
)

// ErrKind classifies a framing failure.
type ErrKind uint8

const (
	// ErrTruncated is a stream that ends mid-header or mid-payload.
	ErrTruncated ErrKind = 0
	// ErrNonDivisible is a fixed-length file whose trimmed length is not a
	// multiple of the record size.
	ErrNonDivisible ErrKind = 1
	// ErrIO wraps a read failure from the underlying source.
	ErrIO ErrKind = 2
	// ErrConfig is an invalid framing configuration.
	ErrConfig ErrKind = 3
)

// Error is a framing failure. Framing errors are fatal for the file they
// belong to and carry the file identity for reporting.
type Error struct {
	Kind ErrKind
	File string
	Msg  string
	// Expected and Actual carry sizes for ErrNonDivisible and ErrTruncated.
	Expected, Actual int64
}

func (e *Error) Error() string {
	return fmt.Sprintf("framing error in %s: %s", e.File, e.Msg)
}

// Config describes the physical layout of an input file.
type Config struct {
	Format Format
	// RecordSize is required for FixedLength.
	RecordSize int
	// HeaderWidth is the RDW width in bytes for VariableLength. 0 means 4.
	HeaderWidth int
	// HeaderOrder is the RDW byte order. Mainframe default is big-endian.
	HeaderOrder binary.Order
	// HeaderIncludesSelf is set when the RDW value counts the header's own
	// width in addition to the payload.
	HeaderIncludesSelf bool
	// StartOffset and EndOffset trim a file-level header and trailer (for
	// example tape label blocks) off the whole stream before framing begins.
	StartOffset int64
	EndOffset   int64
	// Compression transparently decompresses the stream before trimming.
	Compression Compression
}

// Framer yields physical record buffers from one byte source. Not safe for
// concurrent use; one Framer frames one file.
type Framer struct {
	cfg  Config
	file string
	r    *bufio.Reader
	// remain is the unread payload byte count, or -1 when unknown.
	remain int64
	done   bool
}

// New builds a Framer over r. size is the total stream byte length, or -1
// when unknown; fixed-length divisibility and end trimming need it, and an
// unknown size forces those modes to buffer the stream.
func New(r io.Reader, size int64, cfg Config, file string) (*Framer, error) {
	if cfg.Format == FixedLength && cfg.RecordSize <= 0 {
		return nil, &Error{Kind: ErrConfig, File: file, Msg: "fixed-length framing needs a record size"}
	}
	if cfg.Format == VariableLength {
		if cfg.HeaderWidth == 0 {
			cfg.HeaderWidth = 4
		}
		if cfg.HeaderWidth > 8 {
			return nil, &Error{Kind: ErrConfig, File: file, Msg: fmt.Sprintf("RDW width %d exceeds 8 bytes", cfg.HeaderWidth)}
		}
	}

	var err error
	r, size, err = decompress(r, size, cfg.Compression, file)
	if err != nil {
		return nil, err
	}

	// Trimming and divisibility both need a byte count. When the source
	// cannot tell us one, pull the stream into memory.
	if size < 0 && (cfg.EndOffset > 0 || cfg.Format == FixedLength) {
		all, err := io.ReadAll(r)
		if err != nil {
			return nil, &Error{Kind: ErrIO, File: file, Msg: errors.Wrap(err, "buffering stream").Error()}
		}
		r = bytes.NewReader(all)
		size = int64(len(all))
	}

	f := &Framer{cfg: cfg, file: file, remain: -1}
	if size >= 0 {
		usable := size - cfg.StartOffset - cfg.EndOffset
		if usable < 0 {
			return nil, &Error{
				Kind: ErrTruncated, File: file,
				Msg:      fmt.Sprintf("file of %d bytes is smaller than the %d byte trim offsets", size, cfg.StartOffset+cfg.EndOffset),
				Expected: cfg.StartOffset + cfg.EndOffset, Actual: size,
			}
		}
		if cfg.Format == FixedLength && usable%int64(cfg.RecordSize) != 0 {
			return nil, &Error{
				Kind: ErrNonDivisible, File: file,
				Msg:      fmt.Sprintf("trimmed length %d is not a multiple of record size %d", usable, cfg.RecordSize),
				Expected: int64(cfg.RecordSize), Actual: usable,
			}
		}
		f.remain = usable
	}

	br := bufio.NewReader(r)
	if cfg.StartOffset > 0 {
		if _, err := io.CopyN(io.Discard, br, cfg.StartOffset); err != nil {
			return nil, &Error{
				Kind: ErrTruncated, File: file,
				Msg:      errors.Wrap(err, "skipping file header").Error(),
				Expected: cfg.StartOffset,
			}
		}
	}
	if f.remain >= 0 {
		f.r = bufio.NewReader(io.LimitReader(br, f.remain))
	} else {
		f.r = br
	}
	return f, nil
}

// Next returns the next physical record. It returns io.EOF once the stream
// is exhausted, after which every call returns io.EOF.
func (f *Framer) Next() ([]byte, error) {
	if f.done {
		return nil, io.EOF
	}
	var rec []byte
	var err error
	switch f.cfg.Format {
	case VariableLength:
		rec, err = f.nextVariable()
	case TextLine:
		rec, err = f.nextLine()
	default:
		rec, err = f.nextFixed()
	}
	if err != nil {
		f.done = true
		return nil, err
	}
	return rec, nil
}

func (f *Framer) nextFixed() ([]byte, error) {
	rec := make([]byte, f.cfg.RecordSize)
	n, err := io.ReadFull(f.r, rec)
	switch err {
	case nil:
		return rec, nil
	case io.EOF:
		return nil, io.EOF
	case io.ErrUnexpectedEOF:
		// Only reachable when the stream length was unknown up front;
		// otherwise New rejected the file as non-divisible.
		return nil, &Error{
			Kind: ErrNonDivisible, File: f.file,
			Msg:      fmt.Sprintf("stream ended %d bytes into a %d byte record", n, f.cfg.RecordSize),
			Expected: int64(f.cfg.RecordSize), Actual: int64(n),
		}
	default:
		return nil, &Error{Kind: ErrIO, File: f.file, Msg: errors.Wrap(err, "reading record").Error()}
	}
}

func (f *Framer) nextVariable() ([]byte, error) {
	header := make([]byte, f.cfg.HeaderWidth)
	n, err := io.ReadFull(f.r, header)
	switch err {
	case nil:
	case io.EOF:
		return nil, io.EOF
	case io.ErrUnexpectedEOF:
		return nil, &Error{
			Kind: ErrTruncated, File: f.file,
			Msg:      fmt.Sprintf("stream ended %d bytes into a %d byte record header", n, f.cfg.HeaderWidth),
			Expected: int64(f.cfg.HeaderWidth), Actual: int64(n),
		}
	default:
		return nil, &Error{Kind: ErrIO, File: f.file, Msg: errors.Wrap(err, "reading record header").Error()}
	}

	length := int64(binary.Uint(header, f.cfg.HeaderOrder))
	if f.cfg.HeaderIncludesSelf {
		length -= int64(f.cfg.HeaderWidth)
	}
	if length < 0 {
		return nil, &Error{
			Kind: ErrTruncated, File: f.file,
			Msg: fmt.Sprintf("record header declares impossible payload length %d", length),
		}
	}

	rec := make([]byte, length)
	if n, err := io.ReadFull(f.r, rec); err != nil {
		return nil, &Error{
			Kind: ErrTruncated, File: f.file,
			Msg:      fmt.Sprintf("stream ended %d bytes into a %d byte record payload", n, length),
			Expected: length, Actual: int64(n),
		}
	}
	return rec, nil
}

func (f *Framer) nextLine() ([]byte, error) {
	line, err := f.r.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, &Error{Kind: ErrIO, File: f.file, Msg: errors.Wrap(err, "reading line").Error()}
	}
	if len(line) == 0 {
		return nil, io.EOF
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

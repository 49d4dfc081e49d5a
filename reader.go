package copybook

import (
	"context"
	"io"

	"github.com/bearlytools/copybook/internal/ctxlog"
	"github.com/bearlytools/copybook/internal/decode"
	"github.com/bearlytools/copybook/internal/framing"
	"github.com/bearlytools/copybook/internal/metrics"
	"github.com/bearlytools/copybook/internal/segment"
)

// Reader decodes one byte stream into records: frame, decode, and (when
// segments are configured) assemble hierarchies. A Reader is a single
// forward pass over its stream and is not safe for concurrent use; decode
// many files by giving each its own Reader over the shared Copybook.
type Reader struct {
	cb   *Copybook
	name string

	fr  *framing.Framer
	dec *decode.Decoder
	asm *segment.Assembler

	lastErrs []error
	flushed  bool
}

// NewReader opens a decoding pass over r. size is the stream's byte length,
// or -1 when unknown (unknown sizes force buffering for fixed-length and
// end-trimmed streams). name identifies the stream in errors and
// diagnostics.
//
// A fixed-length file whose trimmed length is not a multiple of the record
// size is reported here as a *FramingError, after logging a diagnostic line;
// no partial records are ever produced from such a file.
func (c *Copybook) NewReader(ctx context.Context, r io.Reader, size int64, name string, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	var err error
	for _, opt := range opts {
		o, err = opt(o)
		if err != nil {
			return nil, err
		}
	}

	if o.framing.Format == framing.FixedLength {
		o.framing.RecordSize = o.recordSize
		if o.framing.RecordSize == 0 {
			o.framing.RecordSize = c.RecordSize()
		}
	}

	fr, err := framing.New(r, size, o.framing, name)
	if err != nil {
		if fe, ok := err.(*framing.Error); ok && fe.Kind == framing.ErrNonDivisible {
			ctxlog.FromContext(ctx).Warn("file length is not a multiple of the record size",
				"file", name, "record_size", fe.Expected, "trimmed_length", fe.Actual)
		}
		return nil, err
	}

	rd := &Reader{
		cb:   c,
		name: name,
		fr:   fr,
		dec:  decode.NewDecoder(c.tree, o.decode),
	}
	if o.seg.Enabled() {
		rd.asm = segment.NewAssembler(o.seg)
	}
	return rd, nil
}

// Next returns the next logical record in stream order and io.EOF at the
// end. Without segment configuration every physical record is one logical
// record; with it, Next returns each completed root with its accumulated
// children.
//
// Record-level failures (*LayoutError, *MatchError) are returned without
// ending the stream: callers running in lenient mode may keep calling Next.
// Framing errors are fatal for the stream.
func (r *Reader) Next(ctx context.Context) (*Record, error) {
	for {
		buf, err := r.fr.Next()
		if err == io.EOF {
			if r.asm != nil && !r.flushed {
				r.flushed = true
				if root := r.asm.Flush(); root != nil {
					return root, nil
				}
			}
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}

		metrics.Add(ctx, metrics.Records, 1)
		rec, errs, fatal := r.dec.Decode(buf)
		r.lastErrs = errs
		if len(errs) > 0 {
			metrics.Add(ctx, metrics.DecodeErrors, int64(len(errs)))
		}
		if fatal != nil {
			return nil, fatal
		}

		if r.asm == nil {
			return rec, nil
		}

		dropped := r.asm.Dropped
		closed, err := r.asm.Push(rec)
		if err != nil {
			metrics.Add(ctx, metrics.SegmentMismatches, 1)
			return nil, err
		}
		if r.asm.Dropped > dropped {
			metrics.Add(ctx, metrics.DroppedRecords, r.asm.Dropped-dropped)
			ctxlog.FromContext(ctx).Debug("record dropped: discriminator matched no level", "file", r.name)
		}
		if closed != nil {
			return closed, nil
		}
	}
}

// LastErrors returns the value-level decode errors recorded for the most
// recently decoded physical record. The slice is reused between calls to
// Next.
func (r *Reader) LastErrors() []error { return r.lastErrs }

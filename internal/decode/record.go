package decode

import (
	"github.com/bearlytools/copybook/internal/field"
	"github.com/bearlytools/copybook/internal/layout"
)

// Decoder decodes physical record buffers against one copybook tree. It is
// stateless between calls; one Decoder may be shared by concurrent callers.
type Decoder struct {
	tree *field.Tree
	opts Options
}

// NewDecoder returns a Decoder over the given tree.
func NewDecoder(t *field.Tree, opts Options) *Decoder {
	return &Decoder{tree: t, opts: opts}
}

// Decode decodes one record buffer.
//
// The second return value collects value-level errors (bad digit or sign
// nibbles, truncated fields); affected fields carry a null value and the rest
// of the record still decodes. The final error is fatal for the record: a
// layout failure (out-of-range OCCURS DEPENDING ON) or, under Options.Strict,
// the first value-level error.
func (d *Decoder) Decode(buf []byte) (*Record, []error, error) {
	w := &walker{d: d, buf: buf, ints: map[int]int64{}}

	var rec *Record
	if len(d.tree.Roots) == 1 {
		r, _, err := w.walk(d.tree.Roots[0], 0)
		if err != nil {
			return nil, w.errs, err
		}
		if r.Kind == KindGroup {
			rec = r.Group
		} else {
			root := d.tree.At(d.tree.Roots[0])
			rec = &Record{Name: root.Name}
			rec.Append(root.Name, r)
		}
	} else {
		// Multiple 01 items are variant views of the same buffer; each starts
		// at offset zero.
		rec = &Record{}
		for _, ri := range d.tree.Roots {
			v, _, err := w.walk(ri, 0)
			if err != nil {
				return nil, w.errs, err
			}
			rec.Append(d.tree.At(ri).Name, v)
		}
	}

	if d.opts.Strict && len(w.errs) > 0 {
		return nil, w.errs, w.errs[0]
	}
	return rec, w.errs, nil
}

type walker struct {
	d   *Decoder
	buf []byte
	// ints holds every integer value decoded so far, keyed by arena index,
	// for OCCURS DEPENDING ON resolution.
	ints map[int]int64
	errs []error
}

// walk decodes node idx at the given offset and returns its value and the
// offset one past its storage. OCCURS is handled here: repeating nodes come
// back as KindArray.
func (w *walker) walk(idx, offset int) (Value, int, error) {
	t := w.d.tree
	n := t.At(idx)

	count, err := w.count(idx)
	if err != nil {
		return Null(), 0, err
	}

	if n.Occurs == nil {
		return w.one(idx, offset)
	}

	vals := make([]Value, 0, count)
	cursor := offset
	for i := 0; i < count; i++ {
		v, end, err := w.one(idx, cursor)
		if err != nil {
			return Null(), 0, err
		}
		vals = append(vals, v)
		cursor = end
	}
	return Array(vals), cursor, nil
}

// one decodes a single occurrence of node idx.
func (w *walker) one(idx, offset int) (Value, int, error) {
	t := w.d.tree
	n := t.At(idx)

	if n.Kind == field.KindPrimitive {
		size := layout.PrimitiveSize(n)
		end := offset + size
		path := t.Path(idx)
		if end > len(w.buf) {
			w.errs = append(w.errs, errf(path, "record buffer truncated: field needs bytes [%d:%d], buffer has %d", offset, end, len(w.buf)))
			return Null(), end, nil
		}
		v, err := w.d.opts.Primitive(n, path, w.buf[offset:end])
		if err != nil {
			w.errs = append(w.errs, err)
			return Null(), end, nil
		}
		if !n.IsFiller() {
			if i, ok := v.AsInt(); ok {
				w.ints[idx] = i
			}
		}
		return v, end, nil
	}

	rec := &Record{Name: n.Name}
	cursor := offset
	offsets := map[int]int{}
	for _, ci := range n.Children {
		c := t.At(ci)
		start := cursor
		if c.Redefines != field.None {
			start = offsets[c.Redefines]
		} else {
			start = layout.Align(c, start)
		}
		offsets[ci] = start

		v, end, err := w.walk(ci, start)
		if err != nil {
			return Null(), 0, err
		}
		if !c.IsFiller() {
			rec.Append(c.Name, v)
		}
		if end > cursor {
			cursor = end
		}
	}
	return Group(rec), cursor, nil
}

// count resolves the repetition count of node idx: 1 for non-repeating
// fields, the constant for fixed OCCURS, or the controlling field's decoded
// value for OCCURS DEPENDING ON.
func (w *walker) count(idx int) (int, error) {
	t := w.d.tree
	n := t.At(idx)
	if n.Occurs == nil {
		return 1, nil
	}
	oc := n.Occurs
	if oc.Fixed() {
		return oc.Max, nil
	}

	path := t.Path(idx)
	v, ok := w.ints[oc.DependingOn]
	if !ok {
		return 0, layout.Errorf(path, "DEPENDING ON field %s has no decoded integer value", t.Path(oc.DependingOn))
	}
	if v < int64(oc.Min) || v > int64(oc.Max) {
		return 0, layout.Errorf(path, "DEPENDING ON count %d is outside the declared range [%d, %d]", v, oc.Min, oc.Max)
	}
	return int(v), nil
}

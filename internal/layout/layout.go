// Package layout computes byte offsets and lengths for copybook field trees.
//
// Two views exist. The static view assigns every field its offset assuming the
// declared maximum for variable OCCURS; it feeds the layout report and the
// fixed-length record size. The per-record view is computed by the decode
// package, which interleaves offset calculation with value decoding because an
// OCCURS DEPENDING ON count is only known once its controlling field has been
// decoded. Both views share the size rules here.
package layout

import (
	"fmt"

	"github.com/bearlytools/copybook/internal/field"
)

// Error is a layout failure for one record: an out-of-range OCCURS DEPENDING
// ON count or a reference that cannot be resolved at decode time.
type Error struct {
	Field string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("layout error at %s: %s", e.Field, e.Msg)
}

// Errorf builds an *Error for the given qualified field name.
func Errorf(fieldName, format string, args ...any) *Error {
	return &Error{Field: fieldName, Msg: fmt.Sprintf(format, args...)}
}

// PrimitiveSize is the storage byte count of a single occurrence of a
// primitive field.
func PrimitiveSize(n *field.Node) int {
	switch n.Usage {
	case field.UsagePacked:
		// Two digits per byte plus the sign nibble.
		return n.Pic.Digits/2 + 1
	case field.UsageBinary:
		return BinarySize(n.Pic.Digits)
	default:
		size := n.Pic.DisplaySize()
		if n.SignSeparate {
			size++
		}
		return size
	}
}

// BinarySize maps a digit count onto COMP storage: halfword, fullword or
// doubleword.
func BinarySize(digits int) int {
	switch {
	case digits <= 4:
		return 2
	case digits <= 9:
		return 4
	default:
		return 8
	}
}

// Align pads offset up to the next multiple of size for SYNCHRONIZED binary
// items. Non-binary and unsynchronized items are never padded.
func Align(n *field.Node, offset int) int {
	if !n.Sync || n.Usage != field.UsageBinary {
		return offset
	}
	size := PrimitiveSize(n)
	if rem := offset % size; rem != 0 {
		return offset + size - rem
	}
	return offset
}

// Count returns the static repetition count of a node: 1 when it does not
// repeat, otherwise the declared (maximum) count.
func Count(n *field.Node) int {
	if n.Occurs == nil {
		return 1
	}
	return n.Occurs.Max
}

// StaticSize is the storage consumed by one occurrence of node idx and
// everything beneath it when it starts at the given absolute record offset,
// using declared maximums for variable OCCURS. SYNC alignment is relative to
// the start of the record, so a group's size depends on where it starts.
func StaticSize(t *field.Tree, idx, offset int) int {
	n := t.At(idx)
	if n.Kind == field.KindPrimitive {
		return PrimitiveSize(n)
	}
	cursor := offset
	offsets := map[int]int{}
	for _, ci := range n.Children {
		c := t.At(ci)
		start := cursor
		if c.Redefines != field.None {
			start = offsets[c.Redefines]
		} else {
			start = Align(c, start)
		}
		offsets[ci] = start
		end := occursEnd(t, ci, start)
		if end > cursor {
			cursor = end
		}
	}
	return cursor - offset
}

// occursEnd is the absolute offset one past every occurrence of node idx
// starting at start. Occurrences are laid out back to back, each aligned at
// the offset it actually lands on, the same way the decoder advances.
func occursEnd(t *field.Tree, idx, start int) int {
	end := start
	for i := 0; i < Count(t.At(idx)); i++ {
		end += StaticSize(t, idx, end)
	}
	return end
}

// RecordSize is the static size of the largest top level item, which is the
// physical record size for fixed-length framing.
func RecordSize(t *field.Tree) int {
	max := 0
	for _, r := range t.Roots {
		if s := StaticSize(t, r, 0); s > max {
			max = s
		}
	}
	return max
}

// Entry is one line of the static layout.
type Entry struct {
	Index  int
	Path   string
	Level  int
	Offset int
	Length int
}

// Static returns the full static layout in declaration order. Offsets are
// absolute within the record; repeating fields report their first occurrence.
func Static(t *field.Tree) []Entry {
	var entries []Entry
	for _, r := range t.Roots {
		staticWalk(t, r, 0, &entries)
	}
	return entries
}

func staticWalk(t *field.Tree, idx, offset int, entries *[]Entry) {
	n := t.At(idx)
	*entries = append(*entries, Entry{
		Index:  idx,
		Path:   t.Path(idx),
		Level:  n.Level,
		Offset: offset,
		Length: StaticSize(t, idx, offset),
	})
	if n.Kind == field.KindGroup {
		cursor := offset
		offsets := map[int]int{}
		for _, ci := range n.Children {
			c := t.At(ci)
			start := cursor
			if c.Redefines != field.None {
				start = offsets[c.Redefines]
			} else {
				start = Align(c, start)
			}
			offsets[ci] = start
			staticWalk(t, ci, start, entries)
			if end := occursEnd(t, ci, start); end > cursor {
				cursor = end
			}
		}
	}
}

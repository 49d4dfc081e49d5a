// Package mapping turns a copybook tree into the externally visible schema:
// field descriptors that a downstream tabular engine consumes to declare the
// shape decoded records conform to. The mapping is a pure function of the
// tree and configuration, so identical inputs always yield an identical
// schema; downstream schema-compatibility checks depend on that.
package mapping

import (
	"github.com/bearlytools/copybook/internal/decode"
	"github.com/bearlytools/copybook/internal/field"
	"github.com/bearlytools/copybook/internal/layout"
	"github.com/bearlytools/copybook/internal/segment"
)

//go:generate stringer -type=Policy

// Policy selects how the copybook's nesting maps onto the schema root.
type Policy uint8

const (
	// CollapseRoot flattens a single root group holding exactly one child
	// group, so the child's fields become top level columns.
	CollapseRoot Policy = 0
	// KeepOriginal preserves nesting exactly as declared.
	KeepOriginal Policy = 1
)

// FieldDescr describes one schema field.
type FieldDescr struct {
	// Name is the field name as declared in the copybook.
	Name string
	// Kind is the value shape records carry for this field. Groups are
	// KindGroup; repeating fields are KindArray with Elem describing the
	// element.
	Kind decode.Kind
	// Elem is set for KindArray.
	Elem *FieldDescr

	// Length is the storage byte count of one occurrence.
	Length int
	// Digits and Scale describe numeric precision; zero for text fields.
	Digits int
	Scale  int
	Signed bool

	// MinOccurs/MaxOccurs bound a repeating field's count.
	MinOccurs, MaxOccurs int

	// Mapping describes a group's fields, in declaration order.
	Mapping Map
	// SelfReferential marks a child-segment array whose element shape is the
	// record schema itself; Mapping is nil for those to keep the schema
	// finite.
	SelfReferential bool
}

// Map is an ordered set of field descriptors.
type Map []*FieldDescr

// New maps a copybook tree onto its record schema under the given policy.
func New(t *field.Tree, policy Policy) Map {
	var m Map
	for _, r := range t.Roots {
		if d := describe(t, r); d != nil {
			m = append(m, d)
		}
	}
	if len(t.Roots) == 1 && len(m) == 1 && m[0].Kind == decode.KindGroup && m[0].Elem == nil {
		// A single 01 group is the record itself, not a column. The decoder
		// makes the same reduction, so this applies under every policy; the
		// policy only governs nesting below the record.
		m = m[0].Mapping
	}
	if policy == CollapseRoot && len(m) == 1 && m[0].Kind == decode.KindGroup && m[0].Elem == nil {
		m = m[0].Mapping
	}
	return m
}

// WithSegments extends a record schema with the synthetic fields the segment
// assembler injects: the generated id and one child array per configured
// level above the root.
func WithSegments(m Map, cfg segment.Config) Map {
	if !cfg.Enabled() {
		return m
	}
	out := make(Map, 0, len(m)+len(cfg.Levels))
	if cfg.GenerateIDs {
		out = append(out, &FieldDescr{Name: segment.IDField, Kind: decode.KindInteger, Digits: 18, Signed: true})
	}
	out = append(out, m...)
	for _, lvl := range cfg.Levels[1:] {
		out = append(out, &FieldDescr{
			Name: lvl.Name,
			Kind: decode.KindArray,
			Elem: &FieldDescr{Name: lvl.Name, Kind: decode.KindGroup, SelfReferential: true},
		})
	}
	return out
}

func describe(t *field.Tree, idx int) *FieldDescr {
	n := t.At(idx)
	if n.IsFiller() {
		return nil
	}

	var d *FieldDescr
	if n.Kind == field.KindGroup {
		d = &FieldDescr{Name: n.Name, Kind: decode.KindGroup, Length: layout.StaticSize(t, idx, 0)}
		for _, ci := range n.Children {
			if cd := describe(t, ci); cd != nil {
				d.Mapping = append(d.Mapping, cd)
			}
		}
	} else {
		d = &FieldDescr{
			Name:   n.Name,
			Kind:   primitiveKind(n),
			Length: layout.PrimitiveSize(n),
			Digits: n.Pic.Digits,
			Scale:  n.Pic.Scale,
			Signed: n.Pic.Signed,
		}
	}

	if n.Occurs != nil {
		elem := *d
		d = &FieldDescr{
			Name:      n.Name,
			Kind:      decode.KindArray,
			Elem:      &elem,
			MinOccurs: n.Occurs.Min,
			MaxOccurs: n.Occurs.Max,
		}
	}
	return d
}

// primitiveKind is the closed value kind a primitive decodes to (null aside).
func primitiveKind(n *field.Node) decode.Kind {
	switch {
	case n.Pic.Alpha, n.Pic.Edited:
		return decode.KindText
	case n.Pic.Scale != 0:
		return decode.KindDecimal
	default:
		return decode.KindInteger
	}
}

// Package segment reassembles multi-record-type files into hierarchical
// records. A segmented file multiplexes several record shapes over one
// physical layout; a discriminator field value says which shape (and which
// hierarchy level) each record is. The assembler is explicit state threaded
// through one stream's iteration: create one Assembler per file, never share
// one between streams.
package segment

import (
	"fmt"
	"strings"

	"github.com/bearlytools/copybook/internal/decode"
)

// Level configures one hierarchy level. Level 0 is the root; a level-N record
// becomes a child of the most recent level-(N-1) record in file order.
type Level struct {
	// Name labels the segment and names the child array field on the parent.
	Name string
	// Values are the discriminator values accepted for this level.
	Values []string
	// Prefix, when set, accepts any discriminator value with that prefix.
	Prefix string
	// IDPrefix, when set, additionally requires the discriminator to carry
	// the prefix. It partitions discriminator value spaces that reuse the
	// same level codes.
	IDPrefix string
}

// Config drives segment matching and hierarchy assembly.
type Config struct {
	// DiscriminatorField is the name of the decoded field holding the
	// segment code. Nested fields are found by walking groups.
	DiscriminatorField string
	// Levels in hierarchy order, root first.
	Levels []Level
	// GenerateIDs assigns a monotonically increasing id per root record,
	// shared by all of its descendants. Ids are only monotonic within one
	// stream.
	GenerateIDs bool
	// DropUnmatched silently drops records whose discriminator matches no
	// level instead of failing the stream. Drops are counted.
	DropUnmatched bool
}

// Enabled reports whether segment processing is configured at all.
func (c Config) Enabled() bool { return c.DiscriminatorField != "" && len(c.Levels) > 0 }

// MatchError is a record whose discriminator value matched no configured
// level, or a child record with no open parent.
type MatchError struct {
	Value string
	Msg   string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("segment match error: %s (discriminator %q)", e.Msg, e.Value)
}

// IDField is the name of the synthetic identifier injected into assembled
// records when Config.GenerateIDs is set.
const IDField = "RECORD-ID"

// Assembler builds hierarchical records from a stream of flat decoded
// records. Not safe for concurrent use; the open-record state belongs to
// exactly one ordered stream.
type Assembler struct {
	cfg Config
	// open[i] is the most recent record seen at level i, still accumulating
	// children.
	open   []*decode.Record
	nextID int64
	// Dropped counts records dropped under DropUnmatched.
	Dropped int64
}

// NewAssembler returns an Assembler for one record stream.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{cfg: cfg, open: make([]*decode.Record, len(cfg.Levels)), nextID: 1}
}

// Push feeds the next record in stream order. When the record opens a new
// root, the previously accumulated root is returned; otherwise the first
// return is nil. A *MatchError is returned for unmatched records unless the
// configuration drops them.
func (a *Assembler) Push(rec *decode.Record) (*decode.Record, error) {
	disc, ok := find(rec, a.cfg.DiscriminatorField)
	if !ok {
		return nil, &MatchError{Msg: fmt.Sprintf("record has no field %q", a.cfg.DiscriminatorField)}
	}
	value := discString(disc)

	level := a.match(value)
	if level < 0 {
		if a.cfg.DropUnmatched {
			a.Dropped++
			return nil, nil
		}
		return nil, &MatchError{Value: value, Msg: "value matches no configured level"}
	}

	if level == 0 {
		closed := a.closeRoot()
		if a.cfg.GenerateIDs {
			rec.Fields = append([]decode.Field{{Name: IDField, Value: decode.Integer(a.nextID)}}, rec.Fields...)
			a.nextID++
		}
		a.open[0] = rec
		return closed, nil
	}

	parent := a.open[level-1]
	if parent == nil {
		if a.cfg.DropUnmatched {
			a.Dropped++
			return nil, nil
		}
		return nil, &MatchError{Value: value, Msg: fmt.Sprintf("level %d record has no open level %d parent", level, level-1)}
	}
	if a.cfg.GenerateIDs {
		if id, ok := a.open[0].Get(IDField); ok {
			rec.Fields = append([]decode.Field{{Name: IDField, Value: id}}, rec.Fields...)
		}
	}
	attach(parent, a.cfg.Levels[level].Name, rec)
	a.open[level] = rec
	return nil, nil
}

// Flush closes and returns the final open root, or nil when the stream held
// no root records. Call once after the last Push.
func (a *Assembler) Flush() *decode.Record {
	return a.closeRoot()
}

func (a *Assembler) closeRoot() *decode.Record {
	root := a.open[0]
	for i := range a.open {
		a.open[i] = nil
	}
	return root
}

// match finds the record's level: level 0 is checked first and the first
// match wins.
func (a *Assembler) match(value string) int {
	for i, lvl := range a.cfg.Levels {
		if lvl.IDPrefix != "" && !strings.HasPrefix(value, lvl.IDPrefix) {
			continue
		}
		if lvl.Prefix != "" && strings.HasPrefix(value, lvl.Prefix) {
			return i
		}
		for _, v := range lvl.Values {
			if value == v {
				return i
			}
		}
	}
	return -1
}

// attach appends child to the parent's array field for the level, creating
// the array on first use.
func attach(parent *decode.Record, name string, child *decode.Record) {
	for i := range parent.Fields {
		f := &parent.Fields[i]
		if f.Name == name && f.Value.Kind == decode.KindArray {
			f.Value.List = append(f.Value.List, decode.Group(child))
			return
		}
	}
	parent.Append(name, decode.Array([]decode.Value{decode.Group(child)}))
}

// find walks the record's groups for the first field with the given name.
// Arrays are not descended: a discriminator inside an OCCURS is ambiguous.
func find(rec *decode.Record, name string) (decode.Value, bool) {
	for _, f := range rec.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	for _, f := range rec.Fields {
		if f.Value.Kind == decode.KindGroup {
			if v, ok := find(f.Value.Group, name); ok {
				return v, true
			}
		}
	}
	return decode.Value{}, false
}

// discString renders a discriminator value for matching. Text values are
// trimmed of padding, since discriminators live in fixed-width fields.
func discString(v decode.Value) string {
	if v.Kind == decode.KindText {
		return strings.TrimSpace(v.Text)
	}
	return v.String()
}

// Package decode turns raw record bytes into typed values using a copybook
// tree. Offsets are computed while decoding, because an OCCURS DEPENDING ON
// count is only known after its controlling field's value has been read.
// Every call is a pure computation over one buffer; a single tree may be used
// by any number of concurrent decoders.
package decode

import (
	"fmt"

	"github.com/shopspring/decimal"
)

//go:generate stringer -type=Kind

// Kind is the closed set of decoded value shapes. Consumers switch over Kind
// exhaustively; adding a new kind is a breaking change.
type Kind uint8

const (
	// KindNull is a logically absent value (blank, low-values or high-values
	// fill, per the configured null heuristics).
	KindNull Kind = 0
	// KindText is character data.
	KindText Kind = 1
	// KindInteger is a whole number that fits in an int64.
	KindInteger Kind = 2
	// KindDecimal is an exact scaled decimal.
	KindDecimal Kind = 3
	// KindGroup is a nested record.
	KindGroup Kind = 4
	// KindArray is a repetition of values from an OCCURS field.
	KindArray Kind = 5
)

// Value is a decoded field value, tagged by Kind. Only the member matching
// the Kind is meaningful.
type Value struct {
	Kind  Kind
	Text  string
	Int   int64
	Dec   decimal.Decimal
	Group *Record
	List  []Value
}

func Null() Value            { return Value{Kind: KindNull} }
func Text(s string) Value    { return Value{Kind: KindText, Text: s} }
func Integer(i int64) Value  { return Value{Kind: KindInteger, Int: i} }
func Group(r *Record) Value  { return Value{Kind: KindGroup, Group: r} }
func Array(vs []Value) Value { return Value{Kind: KindArray, List: vs} }

func Decimal(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Dec: d} }

// String renders the value for diagnostics and text output. Not a wire format.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "<null>"
	case KindText:
		return v.Text
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindDecimal:
		return v.Dec.String()
	case KindGroup:
		return v.Group.String()
	case KindArray:
		return fmt.Sprintf("%v", v.List)
	}
	return fmt.Sprintf("Kind(%d)", v.Kind)
}

// AsInt returns the value as an int64 where it has a whole-number reading.
func (v Value) AsInt() (int64, bool) {
	switch v.Kind {
	case KindInteger:
		return v.Int, true
	case KindDecimal:
		if v.Dec.IsInteger() {
			return v.Dec.IntPart(), true
		}
	}
	return 0, false
}

// Field is one named value of a decoded record, in declaration order.
type Field struct {
	Name  string
	Value Value
}

// Record is a decoded record: an ordered list of named values. Order is
// copybook declaration order, which downstream schema checks rely on.
type Record struct {
	Name   string
	Fields []Field
}

// Append adds a field. Declaration order is preserved; names repeat when the
// copybook repeats them.
func (r *Record) Append(name string, v Value) {
	r.Fields = append(r.Fields, Field{Name: name, Value: v})
}

// Get returns the first field with the given name.
func (r *Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

func (r *Record) String() string {
	return fmt.Sprintf("%s%v", r.Name, r.Fields)
}

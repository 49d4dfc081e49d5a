// Package copybook compiles COBOL copybooks and decodes mainframe data files
// against them.
//
// A Copybook is compiled once with Parse and is immutable afterwards: one
// Copybook may drive any number of concurrent Readers, each consuming its own
// byte stream. Within a stream records decode in order (segment assembly
// depends on it); across streams decoding is independent.
package copybook

import (
	"context"

	"github.com/bearlytools/copybook/internal/decode"
	"github.com/bearlytools/copybook/internal/field"
	"github.com/bearlytools/copybook/internal/framing"
	"github.com/bearlytools/copybook/internal/layout"
	"github.com/bearlytools/copybook/internal/mapping"
	"github.com/bearlytools/copybook/internal/parser"
	"github.com/bearlytools/copybook/internal/segment"
)

// Value kinds, re-exported so callers can switch exhaustively over decoded
// values without importing internal packages.
type (
	Kind   = decode.Kind
	Value  = decode.Value
	Field  = decode.Field
	Record = decode.Record
)

const (
	KindNull    = decode.KindNull
	KindText    = decode.KindText
	KindInteger = decode.KindInteger
	KindDecimal = decode.KindDecimal
	KindGroup   = decode.KindGroup
	KindArray   = decode.KindArray
)

// Schema types.
type (
	Schema     = mapping.Map
	FieldDescr = mapping.FieldDescr
	Policy     = mapping.Policy
)

const (
	CollapseRoot = mapping.CollapseRoot
	KeepOriginal = mapping.KeepOriginal
)

// Segment configuration.
type (
	SegmentConfig = segment.Config
	SegmentLevel  = segment.Level
)

// IDField is the synthetic identifier field injected when record-id
// generation is on.
const IDField = segment.IDField

// Error types callers match with errors.As.
type (
	SyntaxError  = parser.SyntaxError
	LayoutError  = layout.Error
	DecodeError  = decode.Error
	FramingError = framing.Error
	MatchError   = segment.MatchError
)

// Copybook is a compiled copybook schema. Immutable and safe for concurrent
// use.
type Copybook struct {
	tree *field.Tree
}

// Parse compiles copybook source text. On failure the error is a
// *SyntaxError and no partial schema is returned.
func Parse(ctx context.Context, src string) (*Copybook, error) {
	tree, err := parser.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	return &Copybook{tree: tree}, nil
}

// RecordSize is the static byte size of one record: the size of the largest
// top-level item, using declared maximums for variable OCCURS. Fixed-length
// framing defaults to this size.
func (c *Copybook) RecordSize() int {
	return layout.RecordSize(c.tree)
}

// LayoutReport renders the static layout as a text table. The report is
// byte-identical across runs for the same copybook, so it can be diffed
// against a golden reference.
func (c *Copybook) LayoutReport() string {
	return layout.Report(c.tree)
}

// Schema maps the copybook onto the externally visible record schema. When a
// segment configuration is supplied, the synthetic id and child-segment
// array fields the assembler injects are part of the schema.
func (c *Copybook) Schema(policy Policy, seg SegmentConfig) Schema {
	return mapping.WithSegments(mapping.New(c.tree, policy), seg)
}

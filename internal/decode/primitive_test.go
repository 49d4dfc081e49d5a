package decode

import (
	"testing"

	"github.com/gostdlib/base/context"

	"github.com/bearlytools/copybook/internal/field"
	"github.com/bearlytools/copybook/internal/parser"
)

// prim parses a one-field copybook and returns the primitive node.
func prim(t *testing.T, decl string) *field.Node {
	t.Helper()
	tree, err := parser.Parse(context.Background(), "       01 F "+decl+".\n")
	if err != nil {
		t.Fatalf("prim(%s): unexpected parse error: %s", decl, err)
	}
	return tree.At(tree.Roots[0])
}

func TestPrimitive(t *testing.T) {
	tests := []struct {
		name    string
		decl    string
		opts    Options
		b       []byte
		want    string
		wantErr bool
	}{
		{
			name: "Success: EBCDIC text, trailing spaces trimmed",
			decl: "PIC X(5)",
			opts: Options{TrimText: true},
			b:    []byte{0xC1, 0xC2, 0xC3, 0x40, 0x40}, // "ABC  "
			want: "ABC",
		},
		{
			name: "Success: EBCDIC text, raw padding kept",
			decl: "PIC X(4)",
			b:    []byte{0xC1, 0xC2, 0x40, 0x40},
			want: "AB  ",
		},
		{
			name: "Success: unsigned zoned decimal",
			decl: "PIC 9(4)",
			b:    []byte{0xF0, 0xF1, 0xF2, 0xF3},
			want: "123",
		},
		{
			name: "Success: zoned with leading space padding",
			decl: "PIC 9(4)",
			b:    []byte{0x40, 0x40, 0xF4, 0xF2},
			want: "42",
		},
		{
			name: "Success: trailing overpunch negative",
			decl: "PIC S9(3)",
			b:    []byte{0xF1, 0xF2, 0xD3},
			want: "-123",
		},
		{
			name: "Success: trailing overpunch positive C zone",
			decl: "PIC S9(3)",
			b:    []byte{0xF1, 0xF2, 0xC3},
			want: "123",
		},
		{
			name: "Success: leading overpunch",
			decl: "PIC S9(3) SIGN LEADING",
			b:    []byte{0xD1, 0xF2, 0xF3},
			want: "-123",
		},
		{
			name: "Success: zoned implied decimal point",
			decl: "PIC S9(3)V99",
			b:    []byte{0xF1, 0xF2, 0xF3, 0xF4, 0xC5},
			want: "123.45",
		},
		{
			name: "Success: separate leading sign",
			decl: "PIC S9(2) SIGN LEADING SEPARATE",
			b:    []byte{0x60, 0xF1, 0xF2}, // "-12"
			want: "-12",
		},
		{
			name: "Success: separate trailing sign",
			decl: "PIC S9(2) SIGN TRAILING SEPARATE",
			b:    []byte{0xF1, 0xF2, 0x4E}, // "12+"
			want: "12",
		},
		{
			name: "Success: ASCII overpunch letter",
			decl: "PIC S9(3)",
			opts: Options{Charset: CharsetASCII},
			b:    []byte("12L"), // L overpunches 3 negative
			want: "-123",
		},
		{
			name: "Success: packed positive",
			decl: "PIC S9(3)V99 COMP-3",
			b:    []byte{0x12, 0x34, 0x5C},
			want: "123.45",
		},
		{
			name: "Success: packed negative",
			decl: "PIC S9(3)V99 COMP-3",
			b:    []byte{0x12, 0x34, 0x5D},
			want: "-123.45",
		},
		{
			name: "Success: packed unsigned F nibble",
			decl: "PIC 9(5) COMP-3",
			b:    []byte{0x12, 0x34, 0x5F},
			want: "12345",
		},
		{
			name: "Success: binary halfword negative",
			decl: "PIC S9(4) COMP",
			b:    []byte{0xFF, 0xFE},
			want: "-2",
		},
		{
			name: "Success: binary fullword unsigned",
			decl: "PIC 9(9) COMP",
			b:    []byte{0x00, 0x01, 0x00, 0x00},
			want: "65536",
		},
		{
			name: "Success: binary with implied decimal",
			decl: "PIC S9(3)V99 COMP",
			b:    []byte{0xFF, 0xFF, 0xCF, 0xC7}, // -12345
			want: "-123.45",
		},
		{
			name: "Success: trailing P scales up",
			decl: "PIC 9(3)P(2)",
			b:    []byte{0xF1, 0xF2, 0xF3},
			want: "12300",
		},
		{
			name:    "Error: EBCDIC byte is not a digit",
			decl:    "PIC 9(2)",
			b:       []byte{0xC1, 0xF2}, // "A2"
			wantErr: true,
		},
		{
			name:    "Error: packed bad digit nibble",
			decl:    "PIC 9(3) COMP-3",
			b:       []byte{0x1A, 0x2C},
			wantErr: true,
		},
		{
			name:    "Error: packed bad sign nibble",
			decl:    "PIC 9(3) COMP-3",
			b:       []byte{0x12, 0x3A},
			wantErr: true,
		},
		{
			name:    "Error: overpunch bad zone nibble",
			decl:    "PIC S9(2)",
			b:       []byte{0xF1, 0xA2},
			wantErr: true,
		},
	}

	for _, test := range tests {
		n := prim(t, test.decl)
		got, err := test.opts.Primitive(n, "F", test.b)
		switch {
		case err == nil && test.wantErr:
			t.Errorf("TestPrimitive(%s): got err == nil, want err != nil", test.name)
			continue
		case err != nil && !test.wantErr:
			t.Errorf("TestPrimitive(%s): got err == %s, want err == nil", test.name, err)
			continue
		case err != nil:
			if _, ok := err.(*Error); !ok {
				t.Errorf("TestPrimitive(%s): got %T, want *Error", test.name, err)
			}
			continue
		}
		if got.String() != test.want {
			t.Errorf("TestPrimitive(%s): got %s, want %s", test.name, got, test.want)
		}
	}
}

func TestNullDetection(t *testing.T) {
	tests := []struct {
		name string
		decl string
		opts Options
		b    []byte
		want Kind
	}{
		{
			name: "low-values text is null",
			decl: "PIC X(3)",
			b:    []byte{0x00, 0x00, 0x00},
			want: KindNull,
		},
		{
			name: "all-space text is an empty string",
			decl: "PIC X(3)",
			opts: Options{TrimText: true},
			b:    []byte{0x40, 0x40, 0x40},
			want: KindText,
		},
		{
			name: "all-space numeric is null",
			decl: "PIC 9(3)",
			b:    []byte{0x40, 0x40, 0x40},
			want: KindNull,
		},
		{
			name: "high-values packed is null",
			decl: "PIC 9(3) COMP-3",
			b:    []byte{0xFF, 0xFF},
			want: KindNull,
		},
		{
			name: "default mode: zero binary is null",
			decl: "PIC 9(4) COMP",
			b:    []byte{0x00, 0x00},
			want: KindNull,
		},
		{
			name: "strict mode: zero binary is zero",
			decl: "PIC 9(4) COMP",
			opts: Options{NullMode: NullStrict},
			b:    []byte{0x00, 0x00},
			want: KindInteger,
		},
		{
			name: "strict mode: low-values packed is null",
			decl: "PIC 9(3) COMP-3",
			opts: Options{NullMode: NullStrict},
			b:    []byte{0x00, 0x00},
			want: KindNull,
		},
	}

	for _, test := range tests {
		n := prim(t, test.decl)
		got, err := test.opts.Primitive(n, "F", test.b)
		if err != nil {
			t.Errorf("TestNullDetection(%s): got err == %s, want err == nil", test.name, err)
			continue
		}
		if got.Kind != test.want {
			t.Errorf("TestNullDetection(%s): got kind %v, want %v", test.name, got.Kind, test.want)
		}
	}
}

package decode

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"

	"github.com/bearlytools/copybook/internal/binary"
)

//go:generate stringer -type=Charset,NullMode

// Charset selects the single-byte character table used for DISPLAY fields.
type Charset uint8

const (
	// CharsetEBCDIC037 is EBCDIC code page 37, the mainframe default.
	CharsetEBCDIC037 Charset = 0
	// CharsetEBCDIC1047 is EBCDIC code page 1047 (Open Systems Latin-1).
	CharsetEBCDIC1047 Charset = 1
	// CharsetEBCDIC1140 is EBCDIC code page 1140 (37 with the euro sign).
	CharsetEBCDIC1140 Charset = 2
	// CharsetASCII treats DISPLAY bytes as ASCII/Latin-1.
	CharsetASCII Charset = 3
)

// EBCDIC reports whether the charset is an EBCDIC code page, which changes
// how zoned-decimal digits and overpunched signs are read.
func (c Charset) EBCDIC() bool { return c != CharsetASCII }

// The byte-to-rune tables are fixed reference data from x/text; they are
// validated by golden tests, not derived here.
func (c Charset) table() *charmap.Charmap {
	switch c {
	case CharsetEBCDIC1047:
		return charmap.CodePage1047
	case CharsetEBCDIC1140:
		return charmap.CodePage1140
	case CharsetASCII:
		return charmap.ISO8859_1
	default:
		return charmap.CodePage037
	}
}

// DecodeString maps raw bytes through the charset's table.
func (c Charset) DecodeString(b []byte) string {
	cm := c.table()
	out := make([]rune, len(b))
	for i, by := range b {
		out[i] = cm.DecodeByte(by)
	}
	return string(out)
}

// Space is the charset's space byte, used by blank detection.
func (c Charset) Space() byte {
	if c.EBCDIC() {
		return 0x40
	}
	return 0x20
}

// ParseCharset maps a configuration name onto a Charset.
func ParseCharset(name string) (Charset, error) {
	switch name {
	case "", "ebcdic", "cp037", "ebcdic_cp037":
		return CharsetEBCDIC037, nil
	case "cp1047", "ebcdic_cp1047":
		return CharsetEBCDIC1047, nil
	case "cp1140", "ebcdic_cp1140":
		return CharsetEBCDIC1140, nil
	case "ascii":
		return CharsetASCII, nil
	}
	return 0, fmt.Errorf("unknown charset %q", name)
}

// NullMode selects the null-detection heuristics.
type NullMode uint8

const (
	// NullDefault flags a field as null when its bytes are entirely a fill
	// pattern: low-values, spaces or high-values.
	NullDefault NullMode = 0
	// NullStrict adds checks that keep valid zero values out of the null
	// bucket: binary fields are never null, and an all-low-values packed
	// field (which has no valid sign nibble) is null rather than an error.
	NullStrict NullMode = 1
)

// Options configure value decoding. The zero value is the mainframe default:
// EBCDIC cp037, big-endian COMP fields, default null detection.
type Options struct {
	Charset  Charset
	Order    binary.Order
	NullMode NullMode
	// TrimText removes trailing space padding from text values.
	TrimText bool
	// Strict turns per-field decode errors into record-fatal errors.
	Strict bool
}

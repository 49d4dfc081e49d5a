package decode

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bearlytools/copybook/internal/binary"
	"github.com/bearlytools/copybook/internal/field"
)

// Primitive decodes one occurrence of a primitive field from its exact byte
// slice. path is the qualified field name used in errors.
func (o Options) Primitive(n *field.Node, path string, b []byte) (Value, error) {
	if o.isNull(n, b) {
		return Null(), nil
	}
	switch {
	case n.Pic.Alpha, n.Pic.Edited:
		return o.text(b), nil
	case n.Usage == field.UsagePacked:
		return o.packed(n, path, b)
	case n.Usage == field.UsageBinary:
		return o.binaryInt(n, path, b)
	default:
		return o.zoned(n, path, b)
	}
}

func (o Options) text(b []byte) Value {
	s := o.Charset.DecodeString(b)
	if o.TrimText {
		s = strings.TrimRight(s, " \x00")
	}
	return Text(s)
}

// scaled turns an unscaled digit value into the field's numeric value.
func scaled(unscaled int64, negative bool, scale int) Value {
	if negative {
		unscaled = -unscaled
	}
	if scale == 0 {
		return Integer(unscaled)
	}
	return Decimal(decimal.New(unscaled, int32(-scale)))
}

// zoned decodes a USAGE DISPLAY numeric field: one digit character per byte,
// sign either a separate character or overpunched into the zone nibble of the
// first/last digit.
func (o Options) zoned(n *field.Node, path string, b []byte) (Value, error) {
	negative := false
	digits := b

	switch {
	case n.SignSeparate:
		signAt := len(digits) - 1
		if n.SignLeading {
			signAt = 0
		}
		neg, err := o.separateSign(path, digits[signAt])
		if err != nil {
			return Null(), err
		}
		negative = neg
		if n.SignLeading {
			digits = digits[1:]
		} else {
			digits = digits[:len(digits)-1]
		}
	case n.Pic.Signed:
		// Overpunch: the sign shares a byte with the first or last digit.
		punchAt := len(digits) - 1
		if n.SignLeading {
			punchAt = 0
		}
		d, neg, err := o.overpunch(path, digits[punchAt])
		if err != nil {
			return Null(), err
		}
		negative = neg
		rest := make([]byte, 0, len(digits))
		if n.SignLeading {
			rest = append(rest, digitByte(o.Charset, d))
			rest = append(rest, digits[1:]...)
		} else {
			rest = append(rest, digits[:len(digits)-1]...)
			rest = append(rest, digitByte(o.Charset, d))
		}
		digits = rest
	}

	var v int64
	seen := false
	space := o.Charset.Space()
	for _, c := range digits {
		if c == space && !seen {
			// Leading space padding reads as zero fill.
			continue
		}
		d, err := o.digit(path, c)
		if err != nil {
			return Null(), err
		}
		seen = true
		if v > (math.MaxInt64-int64(d))/10 {
			return Null(), errf(path, "display numeric overflows 18 digits")
		}
		v = v*10 + int64(d)
	}
	return scaled(v, negative, n.Pic.Scale), nil
}

func (o Options) digit(path string, c byte) (byte, error) {
	if o.Charset.EBCDIC() {
		if c&0xF0 != 0xF0 || c&0x0F > 9 {
			return 0, errf(path, "byte 0x%02X is not an EBCDIC digit", c)
		}
		return c & 0x0F, nil
	}
	if c < '0' || c > '9' {
		return 0, errf(path, "byte 0x%02X is not an ASCII digit", c)
	}
	return c - '0', nil
}

func digitByte(cs Charset, d byte) byte {
	if cs.EBCDIC() {
		return 0xF0 | d
	}
	return '0' + d
}

func (o Options) separateSign(path string, c byte) (negative bool, err error) {
	if o.Charset.EBCDIC() {
		switch c {
		case 0x4E: // +
			return false, nil
		case 0x60: // -
			return true, nil
		}
		return false, errf(path, "byte 0x%02X is not an EBCDIC sign character", c)
	}
	switch c {
	case '+':
		return false, nil
	case '-':
		return true, nil
	}
	return false, errf(path, "byte 0x%02X is not a sign character", c)
}

// overpunch extracts the digit and sign from an overpunched byte. In EBCDIC
// the zone nibble carries the sign: 0xC/0xF positive, 0xD negative. In ASCII
// data the conventional overpunch letters are used.
func (o Options) overpunch(path string, c byte) (digit byte, negative bool, err error) {
	if o.Charset.EBCDIC() {
		d := c & 0x0F
		if d > 9 {
			return 0, false, errf(path, "invalid digit nibble 0x%X in overpunched byte 0x%02X", d, c)
		}
		switch c & 0xF0 {
		case 0xC0, 0xF0:
			return d, false, nil
		case 0xD0:
			return d, true, nil
		}
		return 0, false, errf(path, "invalid sign nibble 0x%X in overpunched byte 0x%02X", c>>4, c)
	}
	switch {
	case c >= '0' && c <= '9':
		return c - '0', false, nil
	case c == '{':
		return 0, false, nil
	case c >= 'A' && c <= 'I':
		return c - 'A' + 1, false, nil
	case c == '}':
		return 0, true, nil
	case c >= 'J' && c <= 'R':
		return c - 'J' + 1, true, nil
	}
	return 0, false, errf(path, "byte 0x%02X is not an overpunched digit", c)
}

// packed decodes a COMP-3 field: two BCD digits per byte, with the final low
// nibble holding the sign.
func (o Options) packed(n *field.Node, path string, b []byte) (Value, error) {
	if len(b) == 0 {
		return Null(), errf(path, "packed field has no bytes")
	}
	var v int64
	push := func(d byte) error {
		if d > 9 {
			return errf(path, "invalid digit nibble 0x%X", d)
		}
		if v > (math.MaxInt64-int64(d))/10 {
			return errf(path, "packed value overflows 18 digits")
		}
		v = v*10 + int64(d)
		return nil
	}

	for i := 0; i < len(b)-1; i++ {
		if err := push(b[i] >> 4); err != nil {
			return Null(), err
		}
		if err := push(b[i] & 0x0F); err != nil {
			return Null(), err
		}
	}
	last := b[len(b)-1]
	if err := push(last >> 4); err != nil {
		return Null(), err
	}

	negative := false
	switch last & 0x0F {
	case 0xC, 0xF:
	case 0xD:
		negative = true
	default:
		return Null(), errf(path, "invalid sign nibble 0x%X", last&0x0F)
	}
	return scaled(v, negative, n.Pic.Scale), nil
}

// binaryInt decodes a COMP/BINARY field as a two's-complement integer.
func (o Options) binaryInt(n *field.Node, path string, b []byte) (Value, error) {
	v, err := binary.Int(b, o.Order, n.Pic.Signed)
	if err != nil {
		return Null(), errf(path, "%s", err.Error())
	}
	if n.Pic.Scale == 0 {
		return Integer(v), nil
	}
	return Decimal(decimal.New(v, int32(-n.Pic.Scale))), nil
}

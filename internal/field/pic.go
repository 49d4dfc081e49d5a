package field

import (
	"fmt"
	"strconv"
	"strings"
)

// Pic is a parsed PICTURE clause.
type Pic struct {
	// Raw is the clause text as declared, e.g. "S9(4)V99".
	Raw string
	// Alpha is true for X/A pictures (character data).
	Alpha bool
	// Edited is true for numeric-edited pictures (Z * , . B 0 /). Edited
	// fields occupy one byte per symbol and decode as text.
	Edited bool
	// Digits is the total count of digit positions (9 and Z symbols).
	Digits int
	// Scale is the count of digit positions right of the implied decimal
	// point. P scaling can push it above Digits or below zero.
	Scale int
	// Signed is true when the picture carries an S.
	Signed bool
	// Chars is the count of character positions for Alpha or Edited pictures.
	Chars int
}

// ParsePic parses a PICTURE clause string. The clause must already be
// upper-cased and stripped of the PIC/PICTURE keyword.
func ParsePic(s string) (Pic, error) {
	if s == "" {
		return Pic{}, fmt.Errorf("empty PIC clause")
	}
	p := Pic{Raw: s}

	rest := s
	if strings.HasPrefix(rest, "S") {
		p.Signed = true
		rest = rest[1:]
	}

	type sym struct {
		r rune
		n int
	}
	var syms []sym
	for i := 0; i < len(rest); {
		r := rune(rest[i])
		i++
		n := 1
		if i < len(rest) && rest[i] == '(' {
			close := strings.IndexByte(rest[i:], ')')
			if close < 0 {
				return Pic{}, fmt.Errorf("PIC %q: '(' without ')'", s)
			}
			count, err := strconv.Atoi(rest[i+1 : i+close])
			if err != nil || count < 1 {
				return Pic{}, fmt.Errorf("PIC %q: bad repetition count %q", s, rest[i+1:i+close])
			}
			n = count
			i += close + 1
		}
		syms = append(syms, sym{r, n})
	}

	sawV := false
	leadingP := 0
	trailingP := 0
	for _, sm := range syms {
		switch sm.r {
		case '9':
			p.Digits += sm.n
			if sawV {
				p.Scale += sm.n
			}
		case 'X', 'A':
			p.Alpha = true
			p.Chars += sm.n
		case 'V':
			if sawV {
				return Pic{}, fmt.Errorf("PIC %q: more than one V", s)
			}
			sawV = true
		case 'P':
			if p.Digits == 0 {
				leadingP += sm.n
			} else {
				trailingP += sm.n
			}
		case 'Z', '*':
			p.Edited = true
			p.Digits += sm.n
			if sawV {
				p.Scale += sm.n
			}
		case ',', '.', 'B', '0', '/', '+', '-', '$':
			p.Edited = true
			p.Chars += sm.n
		default:
			return Pic{}, fmt.Errorf("PIC %q: unsupported symbol %q", s, sm.r)
		}
	}

	if p.Alpha && (p.Digits > 0 || p.Signed || sawV) {
		return Pic{}, fmt.Errorf("PIC %q: mixes alphanumeric and numeric symbols", s)
	}
	if !p.Alpha && p.Digits == 0 {
		return Pic{}, fmt.Errorf("PIC %q: no digit positions", s)
	}
	if p.Digits > 18 {
		return Pic{}, fmt.Errorf("PIC %q: %d digits exceeds the 18 digit maximum", s, p.Digits)
	}

	// PPP999 shifts the implied point left of every digit; 999PPP shifts it
	// right of the last digit.
	if leadingP > 0 {
		p.Scale = p.Digits + leadingP
	}
	if trailingP > 0 {
		p.Scale = -trailingP
	}

	if p.Edited {
		p.Chars += p.Digits
	}
	return p, nil
}

// DisplaySize is the byte count the picture occupies under USAGE DISPLAY,
// before any SIGN SEPARATE byte.
func (p Pic) DisplaySize() int {
	if p.Alpha || p.Edited {
		return p.Chars
	}
	return p.Digits
}

// Integer reports whether the picture is a whole number, usable as an OCCURS
// DEPENDING ON controller.
func (p Pic) Integer() bool {
	return !p.Alpha && !p.Edited && p.Scale == 0
}

package parser

import "strings"

// Copybooks come in two physical formats. Classic fixed-column sources carry a
// sequence number in columns 1-6, an indicator in column 7 ('*' or '/' marks a
// comment line, '-' a continuation) and identification text past column 72.
// Free-format sources use the whole line and mark comments with a leading '*'
// or an inline "*>".
//
// clean normalizes either format to bare statements, one or more per line,
// with comment material removed. Stripped comment and blank lines are kept
// as empty lines so error line numbers still refer to the caller's source.
// Statement text is upper-cased outside of quoted literals, since COBOL
// keywords and names are case-insensitive.

func clean(src string) string {
	lines := strings.Split(src, "\n")
	fixed := isFixedColumn(lines)

	out := make([]string, 0, len(lines))
	blank := func() { out = append(out, "") }
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if fixed {
			if len(line) > 72 {
				line = line[:72]
			}
			if len(line) <= 6 {
				blank()
				continue
			}
			ind := line[6]
			if ind == '*' || ind == '/' {
				blank()
				continue
			}
			line = line[7:]
		} else {
			t := strings.TrimSpace(line)
			if strings.HasPrefix(t, "*") && !strings.HasPrefix(t, "*>") {
				blank()
				continue
			}
			if i := strings.Index(line, "*>"); i >= 0 {
				line = line[:i]
			}
		}
		if strings.TrimSpace(line) == "" {
			blank()
			continue
		}
		out = append(out, upperOutsideQuotes(line))
	}
	return strings.Join(out, "\n")
}

// isFixedColumn reports whether every non-blank line opens with a six
// character sequence area of digits or spaces. A single violating line forces
// free-format treatment, which is the safer default.
func isFixedColumn(lines []string) bool {
	seen := false
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 7 {
			return false
		}
		for _, c := range []byte(line[:6]) {
			if c != ' ' && (c < '0' || c > '9') {
				return false
			}
		}
		seen = true
	}
	return seen
}

func upperOutsideQuotes(line string) string {
	b := []byte(line)
	var quote byte
	for i, c := range b {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

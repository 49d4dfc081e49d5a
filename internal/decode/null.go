package decode

import "github.com/bearlytools/copybook/internal/field"

// Null sentinel fills. These byte patterns are fixed reference behavior; they
// are exercised by golden tests rather than derived from first principles.
const (
	lowValue  = 0x00
	highValue = 0xFF
)

func allBytes(b []byte, want byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c != want {
			return false
		}
	}
	return true
}

// isNull applies the configured null heuristics to a primitive's raw bytes.
func (o Options) isNull(n *field.Node, b []byte) bool {
	space := o.Charset.Space()

	if n.Pic.Alpha {
		// Text: an all-space field is an empty string, not a null. Low and
		// high values have no character reading at all.
		return allBytes(b, lowValue) || allBytes(b, highValue)
	}

	switch o.NullMode {
	case NullStrict:
		switch n.Usage {
		case field.UsageBinary:
			// All-zero binary bytes are a legitimate zero.
			return false
		case field.UsagePacked:
			// Packed zero is 0x00..0x0C; a whole field of low values has no
			// sign nibble and is a blank, not a zero.
			return allBytes(b, lowValue) || allBytes(b, highValue)
		default:
			return allBytes(b, space) || allBytes(b, lowValue) || allBytes(b, highValue)
		}
	default:
		return allBytes(b, space) || allBytes(b, lowValue) || allBytes(b, highValue)
	}
}

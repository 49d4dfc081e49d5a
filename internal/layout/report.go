package layout

import (
	"fmt"
	"strings"

	"github.com/bearlytools/copybook/internal/field"
)

// Report renders the static layout as a fixed-width text table, one line per
// field with its qualified name. The output is a pure function of the tree:
// two runs over the same copybook are byte-identical, so reports can be
// diffed against golden copies.
func Report(t *field.Tree) string {
	entries := Static(t)

	nameWidth := len("FIELD")
	for _, e := range entries {
		if len(e.Path) > nameWidth {
			nameWidth = len(e.Path)
		}
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "%-*s  %5s  %8s  %8s\n", nameWidth, "FIELD", "LEVEL", "OFFSET", "LENGTH")
	fmt.Fprintf(b, "%s\n", strings.Repeat("-", nameWidth+2+5+2+8+2+8))
	for _, e := range entries {
		fmt.Fprintf(b, "%-*s  %5d  %8d  %8d\n", nameWidth, e.Path, e.Level, e.Offset, e.Length)
	}
	fmt.Fprintf(b, "\nRECORD SIZE: %d\n", RecordSize(t))
	return b.String()
}

package parser

import (
	"fmt"
	"testing"

	"github.com/gostdlib/base/context"
	"github.com/kylelemons/godebug/pretty"

	"github.com/bearlytools/copybook/internal/field"
)

// shape is a flat projection of a node used for tree comparisons.
type shape struct {
	Name   string
	Level  int
	Kind   field.Kind
	Usage  field.Usage
	Pic    string
	Parent int
}

func flatten(t *field.Tree) []shape {
	out := make([]shape, 0, len(t.Nodes))
	for i := range t.Nodes {
		n := t.At(i)
		out = append(out, shape{
			Name:   n.Name,
			Level:  n.Level,
			Kind:   n.Kind,
			Usage:  n.Usage,
			Pic:    n.Pic.Raw,
			Parent: n.Parent,
		})
	}
	return out
}

func TestParse(t *testing.T) {
	content := `
       01 CUSTOMER-REC.
          05 CUST-ID        PIC 9(6).
          05 CUST-NAME      PIC X(20).
          05 CUST-BALANCE   PIC S9(7)V99 COMP-3.
          05 CUST-FLAGS     COMP.
             10 FLAG-A      PIC 9(4).
             10 FLAG-B      PIC 9(4) DISPLAY.
`

	want := []shape{
		{Name: "CUSTOMER-REC", Level: 1, Kind: field.KindGroup, Parent: field.None},
		{Name: "CUST-ID", Level: 5, Kind: field.KindPrimitive, Pic: "9(6)", Parent: 0},
		{Name: "CUST-NAME", Level: 5, Kind: field.KindPrimitive, Pic: "X(20)", Parent: 0},
		{Name: "CUST-BALANCE", Level: 5, Kind: field.KindPrimitive, Usage: field.UsagePacked, Pic: "S9(7)V99", Parent: 0},
		{Name: "CUST-FLAGS", Level: 5, Kind: field.KindGroup, Usage: field.UsageBinary, Parent: 0},
		{Name: "FLAG-A", Level: 10, Kind: field.KindPrimitive, Usage: field.UsageBinary, Pic: "9(4)", Parent: 4},
		{Name: "FLAG-B", Level: 10, Kind: field.KindPrimitive, Usage: field.UsageDisplay, Pic: "9(4)", Parent: 4},
	}

	tree, err := Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("TestParse: got err == %s, want err == nil", err)
	}
	if diff := pretty.Compare(want, flatten(tree)); diff != "" {
		t.Fatalf("TestParse: -want/+got:\n%s", diff)
	}
	if diff := pretty.Compare([]int{0}, tree.Roots); diff != "" {
		t.Errorf("TestParse(roots): -want/+got:\n%s", diff)
	}
}

func TestParseRedefines(t *testing.T) {
	content := `
       01 PAY-REC.
          05 PAY-DATE       PIC 9(8).
          05 PAY-DATE-X     REDEFINES PAY-DATE PIC X(8).
`
	tree, err := Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("TestParseRedefines: got err == %s, want err == nil", err)
	}
	i, ok := tree.Lookup("PAY-DATE-X")
	if !ok {
		t.Fatalf("TestParseRedefines: PAY-DATE-X not found")
	}
	target, _ := tree.Lookup("PAY-DATE")
	if tree.At(i).Redefines != target {
		t.Errorf("TestParseRedefines: got Redefines == %d, want %d", tree.At(i).Redefines, target)
	}
}

func TestParseOccurs(t *testing.T) {
	content := `
       01 ORDER-REC.
          05 LINE-COUNT     PIC 9(3).
          05 LINE-ITEM OCCURS 1 TO 10 TIMES DEPENDING ON LINE-COUNT.
             10 ITEM-SKU    PIC X(8).
          05 NOTES          PIC X(5) OCCURS 3 TIMES.
`
	tree, err := Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("TestParseOccurs: got err == %s, want err == nil", err)
	}

	li, _ := tree.Lookup("LINE-ITEM")
	lc, _ := tree.Lookup("LINE-COUNT")
	oc := tree.At(li).Occurs
	if oc == nil {
		t.Fatalf("TestParseOccurs: LINE-ITEM has no Occurs")
	}
	want := field.Occurs{Min: 1, Max: 10, DependingOn: lc}
	if diff := pretty.Compare(want, *oc); diff != "" {
		t.Errorf("TestParseOccurs(LINE-ITEM): -want/+got:\n%s", diff)
	}

	ni, _ := tree.Lookup("NOTES")
	oc = tree.At(ni).Occurs
	if oc == nil {
		t.Fatalf("TestParseOccurs: NOTES has no Occurs")
	}
	want = field.Occurs{Min: 3, Max: 3, DependingOn: field.None}
	if diff := pretty.Compare(want, *oc); diff != "" {
		t.Errorf("TestParseOccurs(NOTES): -want/+got:\n%s", diff)
	}
}

func TestParseConditions(t *testing.T) {
	content := `
       01 TXN-REC.
          05 TXN-TYPE       PIC X.
             88 TXN-DEBIT   VALUE 'D'.
             88 TXN-CREDIT  VALUES 'C' 'R'.
          05 TXN-CITY       PIC X(10).
             88 TXN-HOME    VALUE 'NEW YORK'.
`
	tree, err := Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("TestParseConditions: got err == %s, want err == nil", err)
	}
	i, _ := tree.Lookup("TXN-TYPE")
	want := []field.Condition{
		{Name: "TXN-DEBIT", Values: []string{"D"}},
		{Name: "TXN-CREDIT", Values: []string{"C", "R"}},
	}
	if diff := pretty.Compare(want, tree.At(i).Conditions); diff != "" {
		t.Errorf("TestParseConditions: -want/+got:\n%s", diff)
	}

	// Quoted literals may contain spaces and must survive tokenization whole.
	i, _ = tree.Lookup("TXN-CITY")
	want = []field.Condition{
		{Name: "TXN-HOME", Values: []string{"NEW YORK"}},
	}
	if diff := pretty.Compare(want, tree.At(i).Conditions); diff != "" {
		t.Errorf("TestParseConditions: -want/+got:\n%s", diff)
	}
}

func TestParseMultiLineStatement(t *testing.T) {
	content := `
       01 SPLIT-REC.
          05 SPLIT-AMT
             PIC S9(9)V99
             COMP-3.
`
	tree, err := Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("TestParseMultiLineStatement: got err == %s, want err == nil", err)
	}
	i, ok := tree.Lookup("SPLIT-AMT")
	if !ok {
		t.Fatalf("TestParseMultiLineStatement: SPLIT-AMT not found")
	}
	n := tree.At(i)
	if n.Pic.Raw != "S9(9)V99" || n.Usage != field.UsagePacked {
		t.Errorf("TestParseMultiLineStatement: got PIC %q USAGE %v, want S9(9)V99 COMP-3", n.Pic.Raw, n.Usage)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    ErrKind
	}{
		{
			name:    "Error: empty copybook",
			content: "   \n  \n",
			kind:    ErrUnexpectedToken,
		},
		{
			name:    "Error: level 66",
			content: "       66 ALIAS RENAMES OTHER.\n",
			kind:    ErrBadLevel,
		},
		{
			name:    "Error: level out of range",
			content: "       50 BAD-ITEM PIC X.\n",
			kind:    ErrBadLevel,
		},
		{
			name:    "Error: missing period",
			content: "       01 REC PIC X\n",
			kind:    ErrUnexpectedToken,
		},
		{
			name:    "Error: bad PIC",
			content: "       01 REC PIC 9(19).\n",
			kind:    ErrBadPic,
		},
		{
			name:    "Error: COMP-1 unsupported",
			content: "       01 RATE COMP-1.\n",
			kind:    ErrUnexpectedToken,
		},
		{
			name: "Error: REDEFINES unknown target",
			content: `       01 REC.
          05 A PIC X.
          05 B REDEFINES MISSING PIC X.
`,
			kind: ErrBadReference,
		},
		{
			name: "Error: DEPENDING ON alphanumeric target",
			content: `       01 REC.
          05 N PIC X(3).
          05 ITEM PIC X OCCURS 1 TO 5 DEPENDING ON N.
`,
			kind: ErrBadReference,
		},
		{
			name:    "Error: elementary item without PIC",
			content: "       01 REC.\n          05 EMPTY-ITEM.\n          05 NEXT-ITEM PIC X.\n",
			kind:    ErrBadPic,
		},
		{
			name:    "Error: level 88 unterminated literal",
			content: "       01 REC PIC X.\n          88 REC-SET VALUE 'NEW.\n",
			kind:    ErrUnexpectedToken,
		},
	}

	for _, test := range tests {
		_, err := Parse(context.Background(), test.content)
		if err == nil {
			t.Errorf("TestParseErrors(%s): got err == nil, want err != nil", test.name)
			continue
		}
		se, ok := err.(*SyntaxError)
		if !ok {
			t.Errorf("TestParseErrors(%s): got %T, want *SyntaxError", test.name, err)
			continue
		}
		if se.Kind != test.kind {
			t.Errorf("TestParseErrors(%s): got kind %v, want %v", test.name, se.Kind, test.kind)
		}
	}
}

func TestParseErrorLines(t *testing.T) {
	// Comment and blank lines are stripped before parsing, but error line
	// numbers must still refer to the caller's original source.
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{
			name:    "Error line: free format comment and blank line before the error",
			content: "\n* ledger record layout\n01 REC PIC 9(19).\n",
			line:    3,
		},
		{
			name:    "Error line: fixed format comment line before the error",
			content: "000001*LEDGER RECORD LAYOUT\n\n000003 01 REC PIC 9(19).\n",
			line:    3,
		},
	}

	for _, test := range tests {
		_, err := Parse(context.Background(), test.content)
		if err == nil {
			t.Errorf("TestParseErrorLines(%s): got err == nil, want err != nil", test.name)
			continue
		}
		se, ok := err.(*SyntaxError)
		if !ok {
			t.Errorf("TestParseErrorLines(%s): got %T, want *SyntaxError", test.name, err)
			continue
		}
		if se.Line != test.line {
			t.Errorf("TestParseErrorLines(%s): got Line == %d, want %d", test.name, se.Line, test.line)
		}
	}
}

func TestParseFixedColumns(t *testing.T) {
	// Sequence area in columns 1-6, comment indicator in column 7, and
	// identification area past column 72 must all be ignored.
	lines := []string{
		"000100 01 FIXED-REC.",
		"000200*   A COMMENT LINE",
		"000300    05 FIELD-A PIC X(5).",
	}
	content := ""
	for i, l := range lines {
		content += fmt.Sprintf("%-72sCPYBK%03d\n", l, i+1)
	}

	tree, err := Parse(context.Background(), content)
	if err != nil {
		t.Fatalf("TestParseFixedColumns: got err == %s, want err == nil", err)
	}
	if _, ok := tree.Lookup("FIELD-A"); !ok {
		t.Errorf("TestParseFixedColumns: FIELD-A not found")
	}
	if len(tree.Nodes) != 2 {
		t.Errorf("TestParseFixedColumns: got %d nodes, want 2", len(tree.Nodes))
	}
}

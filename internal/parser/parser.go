// Package parser compiles COBOL copybook source text into a field.Tree.
//
// The grammar is statement oriented: a level number, a name, zero or more
// clauses and a terminating period, possibly spread over several lines.
// Statements are lexed with halfpike and the clause stream is consumed by a
// small hand-rolled grammar, since clauses are flat keyword sequences rather
// than nested expressions.
package parser

import (
	"context"
	"strconv"
	"strings"

	"github.com/johnsiilver/halfpike"

	"github.com/bearlytools/copybook/internal/field"
)

// Parse compiles copybook source into an immutable field tree. On failure the
// returned error is a *SyntaxError and no partial tree is returned.
func Parse(ctx context.Context, src string) (*field.Tree, error) {
	cp := &copybookParser{lastData: field.None}

	cleaned := clean(src)
	if strings.TrimSpace(cleaned) == "" {
		return nil, errf(ErrUnexpectedToken, 0, "copybook contains no statements")
	}

	if err := halfpike.Parse(ctx, cleaned, cp); err != nil {
		if cp.err != nil {
			return nil, cp.err
		}
		return nil, errf(ErrUnexpectedToken, 0, "%s", err.Error())
	}

	tree := &field.Tree{Nodes: cp.nodes, Roots: cp.roots}
	if err := cp.finalize(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

type token struct {
	val  string
	line int
}

// depRef is an OCCURS DEPENDING ON reference waiting for name resolution.
type depRef struct {
	node int
	name string
	line int
}

type copybookParser struct {
	nodes []field.Node
	roots []int

	// stack holds the arena indices of currently open enclosing items.
	stack []int
	// lastData is the most recent non-88 item, the owner of any level-88
	// condition entries that follow it.
	lastData int

	// usageSet marks nodes whose USAGE was declared rather than inherited.
	usageSet []bool

	deps []depRef

	toks []token
	err  *SyntaxError
}

// Validate implements halfpike.Validator. Errors are carried on c.err so they
// keep their SyntaxError type through halfpike.Parse.
func (c *copybookParser) Validate() error { return nil }

// Start is the start point for reading the copybook.
func (c *copybookParser) Start(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	return c.parseStatements
}

func (c *copybookParser) parseStatements(ctx context.Context, p *halfpike.Parser) halfpike.ParseFn {
	for {
		line := p.Next()
		if p.EOF(line) {
			if len(c.toks) > 0 {
				return c.fail(p, errf(ErrUnexpectedToken, c.toks[0].line, "statement is missing its terminating period"))
			}
			return nil
		}
		for _, item := range line.Items {
			v := strings.TrimSpace(item.Val)
			if v == "" {
				continue
			}
			terminated := strings.HasSuffix(v, ".") && v != "."
			if v == "." {
				terminated = true
			} else if terminated {
				c.toks = append(c.toks, token{val: strings.TrimSuffix(v, "."), line: line.LineNum})
			} else {
				c.toks = append(c.toks, token{val: v, line: line.LineNum})
			}
			if terminated {
				if err := c.statement(c.toks); err != nil {
					return c.fail(p, err)
				}
				c.toks = c.toks[:0]
			}
		}
	}
}

func (c *copybookParser) fail(p *halfpike.Parser, err *SyntaxError) halfpike.ParseFn {
	c.err = err
	return p.Errorf("%s", err.Error())
}

func (c *copybookParser) statement(toks []token) *SyntaxError {
	if len(toks) == 0 {
		return nil
	}
	lineNum := toks[0].line

	level, err := strconv.Atoi(toks[0].val)
	if err != nil {
		return errf(ErrBadLevel, lineNum, "expected a level number, got %q", toks[0].val)
	}
	switch {
	case level == 66:
		return errf(ErrBadLevel, lineNum, "level 66 RENAMES is not supported")
	case level == 88:
		return c.condition(toks)
	case (level < 1 || level > 49) && level != 77:
		return errf(ErrBadLevel, lineNum, "level number %d is outside 1-49/77/88", level)
	}

	if len(toks) < 2 {
		return errf(ErrUnexpectedToken, lineNum, "level %d item has no name", level)
	}
	name := toks[1].val
	if err := validName(name); err != nil {
		return errf(ErrUnexpectedToken, lineNum, "invalid field name %q: %v", name, err)
	}

	idx, serr := c.place(level, name, lineNum)
	if serr != nil {
		return serr
	}
	n := &c.nodes[idx]

	hasPic := false
	for i := 2; i < len(toks); {
		kw := toks[i].val
		switch kw {
		case "PIC", "PICTURE":
			i++
			if i >= len(toks) {
				return errf(ErrBadPic, lineNum, ".%s: PIC keyword without a picture", name)
			}
			if toks[i].val == "IS" {
				i++
				if i >= len(toks) {
					return errf(ErrBadPic, lineNum, ".%s: PIC keyword without a picture", name)
				}
			}
			pic, err := field.ParsePic(toks[i].val)
			if err != nil {
				return errf(ErrBadPic, toks[i].line, ".%s: %v", name, err)
			}
			n.Pic = pic
			hasPic = true
			i++
		case "REDEFINES":
			i++
			if i >= len(toks) {
				return errf(ErrBadReference, lineNum, ".%s: REDEFINES without a target name", name)
			}
			target, serr := c.resolveSibling(idx, toks[i].val, toks[i].line)
			if serr != nil {
				return serr
			}
			n.Redefines = target
			i++
		case "USAGE":
			i++
			if i < len(toks) && toks[i].val == "IS" {
				i++
			}
			if i >= len(toks) {
				return errf(ErrUnexpectedToken, lineNum, ".%s: USAGE without a value", name)
			}
			u, ok := usageFor(toks[i].val)
			if !ok {
				return errf(ErrUnexpectedToken, toks[i].line, ".%s: unsupported USAGE %q", name, toks[i].val)
			}
			n.Usage = u
			c.usageSet[idx] = true
			i++
		case "COMP", "COMP-3", "COMP-4", "COMPUTATIONAL", "COMPUTATIONAL-3", "COMPUTATIONAL-4", "BINARY", "DISPLAY", "PACKED-DECIMAL":
			u, _ := usageFor(kw)
			n.Usage = u
			c.usageSet[idx] = true
			i++
		case "COMP-1", "COMP-2", "COMPUTATIONAL-1", "COMPUTATIONAL-2":
			return errf(ErrUnexpectedToken, toks[i].line, ".%s: floating point USAGE %s is not supported", name, kw)
		case "OCCURS":
			var serr *SyntaxError
			i, serr = c.occurs(idx, toks, i+1, name)
			if serr != nil {
				return serr
			}
		case "SIGN":
			i++
			if i < len(toks) && toks[i].val == "IS" {
				i++
			}
			if i >= len(toks) || (toks[i].val != "LEADING" && toks[i].val != "TRAILING") {
				return errf(ErrUnexpectedToken, lineNum, ".%s: SIGN must be LEADING or TRAILING", name)
			}
			n.SignLeading = toks[i].val == "LEADING"
			i++
			if i < len(toks) && toks[i].val == "SEPARATE" {
				n.SignSeparate = true
				i++
				if i < len(toks) && toks[i].val == "CHARACTER" {
					i++
				}
			}
		case "LEADING", "TRAILING":
			n.SignLeading = kw == "LEADING"
			i++
			if i < len(toks) && toks[i].val == "SEPARATE" {
				n.SignSeparate = true
				i++
				if i < len(toks) && toks[i].val == "CHARACTER" {
					i++
				}
			}
		case "SYNCHRONIZED", "SYNC":
			n.Sync = true
			i++
			if i < len(toks) && (toks[i].val == "LEFT" || toks[i].val == "RIGHT") {
				i++
			}
		case "VALUE", "VALUES":
			// VALUE has no layout effect on data items; consume the rest of
			// the statement since literals may span several tokens.
			i = len(toks)
		case "JUSTIFIED", "JUST":
			i++
			if i < len(toks) && toks[i].val == "RIGHT" {
				i++
			}
		case "BLANK":
			i++
			if i < len(toks) && toks[i].val == "WHEN" {
				i++
			}
			if i < len(toks) && zeroWord(toks[i].val) {
				i++
			}
		default:
			return errf(ErrUnexpectedToken, toks[i].line, ".%s: unexpected token %q", name, kw)
		}
	}

	if hasPic && n.Pic.Alpha && n.Usage != field.UsageDisplay && c.usageSet[idx] {
		return errf(ErrBadPic, lineNum, ".%s: PIC %s cannot be combined with USAGE %v", name, n.Pic.Raw, n.Usage)
	}
	c.lastData = idx
	return nil
}

// place creates a node and attaches it to the tree according to level-number
// nesting rules.
func (c *copybookParser) place(level int, name string, line int) (int, *SyntaxError) {
	// A new item closes every open item at the same or a deeper level.
	for len(c.stack) > 0 && c.nodes[c.stack[len(c.stack)-1]].Level >= level {
		c.stack = c.stack[:len(c.stack)-1]
	}
	if level == 77 && len(c.stack) > 0 {
		return 0, errf(ErrBadLevel, line, ".%s: level 77 must be a top level item", name)
	}

	parent := field.None
	if len(c.stack) > 0 {
		parent = c.stack[len(c.stack)-1]
	}

	idx := len(c.nodes)
	n := field.Node{
		Name:      name,
		Level:     level,
		Redefines: field.None,
		Parent:    parent,
	}
	if parent != field.None {
		// USAGE declared on a group applies to everything beneath it.
		n.Usage = c.nodes[parent].Usage
		c.nodes[parent].Children = append(c.nodes[parent].Children, idx)
	} else {
		c.roots = append(c.roots, idx)
	}
	c.nodes = append(c.nodes, n)
	c.usageSet = append(c.usageSet, false)
	c.stack = append(c.stack, idx)
	return idx, nil
}

func (c *copybookParser) condition(toks []token) *SyntaxError {
	line := toks[0].line
	if c.lastData == field.None {
		return errf(ErrBadLevel, line, "level 88 condition before any data item")
	}
	if len(toks) < 2 {
		return errf(ErrUnexpectedToken, line, "level 88 condition has no name")
	}
	cond := field.Condition{Name: toks[1].val}

	i := 2
	if i < len(toks) && (toks[i].val == "VALUE" || toks[i].val == "VALUES") {
		i++
		if i < len(toks) && (toks[i].val == "IS" || toks[i].val == "ARE") {
			i++
		}
		for i < len(toks) {
			v := toks[i].val
			i++
			// A quoted literal may contain spaces, which the tokenizer
			// splits. Rejoin tokens until the closing quote.
			if q := v[0]; q == '\'' || q == '"' {
				for !(len(v) > 1 && v[len(v)-1] == q) {
					if i >= len(toks) {
						return errf(ErrUnexpectedToken, line, "%s: unterminated literal %s", cond.Name, v)
					}
					v = v + " " + toks[i].val
					i++
				}
			}
			cond.Values = append(cond.Values, strings.Trim(v, `'"`))
		}
	}
	owner := &c.nodes[c.lastData]
	owner.Conditions = append(owner.Conditions, cond)
	return nil
}

func (c *copybookParser) occurs(idx int, toks []token, i int, name string) (int, *SyntaxError) {
	n := &c.nodes[idx]
	if i >= len(toks) {
		return 0, errf(ErrUnexpectedToken, toks[i-1].line, ".%s: OCCURS without a count", name)
	}
	count, err := strconv.Atoi(toks[i].val)
	if err != nil || count < 0 {
		return 0, errf(ErrUnexpectedToken, toks[i].line, ".%s: OCCURS count %q is not a number", name, toks[i].val)
	}
	oc := &field.Occurs{Min: count, Max: count, DependingOn: field.None}
	i++

	if i < len(toks) && toks[i].val == "TO" {
		i++
		if i >= len(toks) {
			return 0, errf(ErrUnexpectedToken, toks[i-1].line, ".%s: OCCURS n TO without a maximum", name)
		}
		max, err := strconv.Atoi(toks[i].val)
		if err != nil || max < count {
			return 0, errf(ErrUnexpectedToken, toks[i].line, ".%s: OCCURS maximum %q is not a number >= %d", name, toks[i].val, count)
		}
		oc.Max = max
		i++
	}
	if i < len(toks) && toks[i].val == "TIMES" {
		i++
	}
	if i < len(toks) && toks[i].val == "DEPENDING" {
		i++
		if i < len(toks) && toks[i].val == "ON" {
			i++
		}
		if i >= len(toks) {
			return 0, errf(ErrBadReference, toks[i-1].line, ".%s: DEPENDING ON without a field name", name)
		}
		// OCCURS n DEPENDING ON (no TO clause) bounds the count at [1, n].
		if oc.Min == oc.Max {
			oc.Min = 1
		}
		c.deps = append(c.deps, depRef{node: idx, name: toks[i].val, line: toks[i].line})
		oc.DependingOn = -2 // placeholder until finalize resolves the name
		i++
	}

	// Index and key clauses do not affect layout.
	for i < len(toks) {
		switch toks[i].val {
		case "INDEXED":
			i++
			if i < len(toks) && toks[i].val == "BY" {
				i++
			}
			if i < len(toks) {
				i++
			}
		case "ASCENDING", "DESCENDING":
			i++
			if i < len(toks) && toks[i].val == "KEY" {
				i++
			}
			if i < len(toks) && toks[i].val == "IS" {
				i++
			}
			if i < len(toks) {
				i++
			}
		default:
			n.Occurs = oc
			return i, nil
		}
	}
	n.Occurs = oc
	return i, nil
}

// resolveSibling finds the REDEFINES target among earlier siblings of node idx.
func (c *copybookParser) resolveSibling(idx int, target string, line int) (int, *SyntaxError) {
	n := &c.nodes[idx]
	var siblings []int
	if n.Parent == field.None {
		siblings = c.roots
	} else {
		siblings = c.nodes[n.Parent].Children
	}
	for _, s := range siblings {
		if s == idx {
			continue
		}
		if c.nodes[s].Name == target && c.nodes[s].Level == n.Level {
			return s, nil
		}
	}
	return 0, errf(ErrBadReference, line, ".%s: REDEFINES target %q is not an earlier sibling at level %d", n.Name, target, n.Level)
}

// finalize resolves deferred references and assigns node kinds.
func (c *copybookParser) finalize(t *field.Tree) *SyntaxError {
	for _, d := range c.deps {
		target, ok := t.Lookup(d.name)
		if !ok {
			return errf(ErrBadReference, d.line, ".%s: DEPENDING ON target %q is not declared", t.At(d.node).Name, d.name)
		}
		t.At(d.node).Occurs.DependingOn = target
	}

	for i := range t.Nodes {
		n := t.At(i)
		hasPic := n.Pic.Raw != ""
		switch {
		case len(n.Children) > 0:
			if hasPic {
				return errf(ErrBadPic, 0, ".%s: group item cannot have a PIC clause", n.Name)
			}
			n.Kind = field.KindGroup
		case hasPic:
			n.Kind = field.KindPrimitive
			if n.Usage == field.UsageBinary && n.Pic.Alpha {
				return errf(ErrBadPic, 0, ".%s: PIC %s cannot be USAGE BINARY", n.Name, n.Pic.Raw)
			}
			if n.Usage == field.UsagePacked && n.Pic.Alpha {
				return errf(ErrBadPic, 0, ".%s: PIC %s cannot be USAGE COMP-3", n.Name, n.Pic.Raw)
			}
		default:
			return errf(ErrBadPic, 0, ".%s: elementary item has no PIC clause", n.Name)
		}
	}

	if err := t.Validate(); err != nil {
		return errf(ErrBadReference, 0, "%s", err.Error())
	}
	return nil
}

func usageFor(kw string) (field.Usage, bool) {
	switch kw {
	case "DISPLAY":
		return field.UsageDisplay, true
	case "COMP-3", "COMPUTATIONAL-3", "PACKED-DECIMAL":
		return field.UsagePacked, true
	case "COMP", "COMP-4", "COMPUTATIONAL", "COMPUTATIONAL-4", "BINARY":
		return field.UsageBinary, true
	}
	return 0, false
}

func zeroWord(s string) bool {
	return s == "ZERO" || s == "ZEROS" || s == "ZEROES"
}

func validName(name string) error {
	if name == "" {
		return strconv.ErrSyntax
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return strconv.ErrSyntax
		}
	}
	return nil
}

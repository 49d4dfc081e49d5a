// Package field holds the copybook field tree. A parsed copybook becomes an
// arena of Node values addressed by index; REDEFINES and OCCURS DEPENDING ON
// relations are stored as arena indices, never as owning pointers, so the tree
// has no cycles and can be shared read-only between any number of decoders.
package field

import "fmt"

//go:generate stringer -type=Kind,Usage

// Kind says whether a Node owns storage itself or only groups children.
type Kind uint8

const (
	KindUnknown   Kind = 0
	KindGroup     Kind = 1
	KindPrimitive Kind = 2
)

// Usage is the COBOL USAGE clause, which selects the storage encoding of a
// primitive field.
type Usage uint8

const (
	// UsageDisplay is character data, one byte per character/digit.
	UsageDisplay Usage = 0
	// UsagePacked is COMP-3 packed decimal, two BCD digits per byte with a
	// trailing sign nibble.
	UsagePacked Usage = 1
	// UsageBinary is COMP/COMP-4/BINARY two's-complement integer storage.
	UsageBinary Usage = 2
)

// None marks an unset arena index (no REDEFINES target, no DEPENDING ON).
const None = -1

// Occurs describes repetition of a field.
type Occurs struct {
	// Min and Max bound the repetition count. For a fixed OCCURS n, Min == Max == n.
	Min, Max int
	// DependingOn is the arena index of the integer field that supplies the
	// count at decode time, or None for a fixed count.
	DependingOn int
}

// Fixed reports whether the count is a compile-time constant.
func (o Occurs) Fixed() bool { return o.DependingOn == None }

// Condition is a level-88 condition name attached to the preceding field.
// It does not occupy storage; it is carried as metadata only.
type Condition struct {
	Name   string
	Values []string
}

// Node is one entry in a copybook tree.
type Node struct {
	// Name as declared. FILLER items keep the name "FILLER".
	Name string
	// Level is the declared level number (1-49, or 77).
	Level int
	Kind  Kind

	// Pic is the parsed PICTURE clause. Only valid when Kind == KindPrimitive.
	Pic Pic
	// Usage selects the storage encoding. Groups pass their USAGE down to
	// children at parse time, so by layout time every primitive carries its own.
	Usage Usage

	// SignSeparate is true for SIGN IS ... SEPARATE CHARACTER, which adds one
	// byte of storage for the sign.
	SignSeparate bool
	// SignLeading places the sign (separate byte or overpunch) on the first
	// character instead of the last.
	SignLeading bool
	// Sync is SYNCHRONIZED: binary items are aligned to their own size with
	// slack bytes.
	Sync bool

	// Redefines is the arena index of the earlier sibling whose storage this
	// node overlays, or None.
	Redefines int
	// Occurs is nil when the field does not repeat.
	Occurs *Occurs

	// Conditions are level-88 entries declared under this field.
	Conditions []Condition

	// Parent is the arena index of the enclosing group, or None for a root item.
	Parent int
	// Children are arena indices in declaration order. Empty for primitives.
	Children []int
}

// IsFiller reports whether the node is an unnamed FILLER item.
func (n *Node) IsFiller() bool { return n.Name == "FILLER" }

// Tree is an immutable arena of nodes. Arena order is declaration order.
type Tree struct {
	Nodes []Node
	// Roots are the indices of the level-01 (and 77) items.
	Roots []int
}

// At returns the node at arena index i.
func (t *Tree) At(i int) *Node { return &t.Nodes[i] }

// Lookup finds the first node with the given name in declaration order.
// Copybook names are not guaranteed unique; the first declaration wins, which
// matches how DEPENDING ON and REDEFINES references resolve.
func (t *Tree) Lookup(name string) (int, bool) {
	for i := range t.Nodes {
		if t.Nodes[i].Name == name {
			return i, true
		}
	}
	return None, false
}

// Path returns the dot-joined qualified name of node i, e.g.
// "TRANSACTION.SEGMENT-ID".
func (t *Tree) Path(i int) string {
	n := t.At(i)
	if n.Parent == None {
		return n.Name
	}
	return t.Path(n.Parent) + "." + n.Name
}

// Validate checks arena invariants that the parser must uphold: REDEFINES
// targets are earlier siblings at the same level, DEPENDING ON targets are
// earlier integer primitives.
func (t *Tree) Validate() error {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Redefines != None {
			r := t.At(n.Redefines)
			if n.Redefines >= i {
				return fmt.Errorf(".%s: REDEFINES target %q is not an earlier declaration", n.Name, r.Name)
			}
			if r.Parent != n.Parent || r.Level != n.Level {
				return fmt.Errorf(".%s: REDEFINES target %q is not a sibling at level %d", n.Name, r.Name, n.Level)
			}
		}
		if n.Occurs != nil && !n.Occurs.Fixed() {
			d := n.Occurs.DependingOn
			if d >= i {
				return fmt.Errorf(".%s: DEPENDING ON target declared after the OCCURS field", n.Name)
			}
			dep := t.At(d)
			if dep.Kind != KindPrimitive || dep.Pic.Alpha {
				return fmt.Errorf(".%s: DEPENDING ON target %q is not an integer field", n.Name, dep.Name)
			}
		}
	}
	return nil
}

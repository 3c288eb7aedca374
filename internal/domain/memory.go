package domain

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MemoryNode is one node of the attribute memory tree. It remembers the
// attributes of every node that ever appeared below its parent.
//
// There is no way to remove a child: once a label is known
// under a parent it stays known for the lifetime of the tree.
type MemoryNode struct {
	Label  string
	Record AttributeRecord

	children *orderedmap.OrderedMap[string, *MemoryNode]
}

// NewMemoryNode creates a childless memory node
func NewMemoryNode(label string, rec AttributeRecord) *MemoryNode {
	return &MemoryNode{
		Label:    label,
		Record:   rec,
		children: orderedmap.New[string, *MemoryNode](),
	}
}

// Child returns the child remembered under label
func (m *MemoryNode) Child(label string) (*MemoryNode, bool) {
	return m.children.Get(label)
}

// Ensure returns the child under label, creating it with rec if unknown.
// An existing child keeps its record; callers update it explicitly.
func (m *MemoryNode) Ensure(label string, rec AttributeRecord) (child *MemoryNode, created bool) {
	if child, ok := m.children.Get(label); ok {
		return child, false
	}
	child = NewMemoryNode(label, rec)
	m.children.Set(label, child)
	return child, true
}

// Attach adds an already built child. It fails if the label is taken.
func (m *MemoryNode) Attach(child *MemoryNode) error {
	if _, ok := m.children.Get(child.Label); ok {
		return fmt.Errorf("duplicate child %q under %q", child.Label, m.Label)
	}
	m.children.Set(child.Label, child)
	return nil
}

// Children returns the children in insertion order
func (m *MemoryNode) Children() []*MemoryNode {
	out := make([]*MemoryNode, 0, m.children.Len())
	for pair := m.children.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Len returns the number of direct children
func (m *MemoryNode) Len() int {
	return m.children.Len()
}

// Count returns the number of nodes in the subtree rooted at m
func (m *MemoryNode) Count() int {
	if m == nil {
		return 0
	}
	n := 1
	for _, c := range m.Children() {
		n += c.Count()
	}
	return n
}

// Lookup resolves p against this node; p[0] must be m's own label
func (m *MemoryNode) Lookup(p IdentityPath) (*MemoryNode, bool) {
	if m == nil || len(p) == 0 || p[0] != m.Label {
		return nil, false
	}
	cur := m
	for _, label := range p[1:] {
		next, ok := cur.Child(label)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Equal compares labels, records and child sets recursively. Child order
// is irrelevant.
func (m *MemoryNode) Equal(o *MemoryNode) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Label != o.Label || m.Record != o.Record || m.Len() != o.Len() {
		return false
	}
	for pair := m.children.Oldest(); pair != nil; pair = pair.Next() {
		other, ok := o.Child(pair.Key)
		if !ok || !pair.Value.Equal(other) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (m *MemoryNode) Clone() *MemoryNode {
	if m == nil {
		return nil
	}
	out := NewMemoryNode(m.Label, m.Record)
	for _, c := range m.Children() {
		out.children.Set(c.Label, c.Clone())
	}
	return out
}

// String pretty prints the tree, one node per line, two spaces per level
func (m *MemoryNode) String() string {
	if m == nil {
		return "memory is empty"
	}
	var b strings.Builder
	m.write(&b, "")
	return b.String()
}

func (m *MemoryNode) write(b *strings.Builder, indent string) {
	kind := "rule"
	if m.Record.IsImport {
		kind = "import"
	}
	fmt.Fprintf(b, "%s%s [%s expanded=%t logging=%s]\n",
		indent, m.Label, kind, m.Record.Expanded, m.Record.Level)
	for _, c := range m.Children() {
		c.write(b, indent+"  ")
	}
}

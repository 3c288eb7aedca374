package domain

import "fmt"

// NodeID indexes a node inside its Tree. IDs are only meaningful for the
// tree that produced them; a rebuild hands out a fresh set.
type NodeID int

// NoNode is returned where no node exists (e.g. the parent of the root)
const NoNode NodeID = -1

// PresentationNode is the UI-facing mirror of one StructuralNode
type PresentationNode struct {
	Label    string
	Kind     NodeKind
	Line     int
	File     string
	Expanded bool

	// Level is meaningful when HasLevel is set. Rules always carry a level;
	// imports only carry one once a user stores it explicitly.
	Level    LoggingLevel
	HasLevel bool

	parent   NodeID
	children []NodeID
}

// IsRule reports whether the node mirrors a Rule
func (n *PresentationNode) IsRule() bool {
	return n.Kind == KindRule
}

// Tree is the presentation tree. Nodes live in a flat arena; children are
// owned through index lists and the parent link is a plain index.
type Tree struct {
	nodes []PresentationNode
}

// NewTree creates a tree holding only its root
func NewTree(root PresentationNode) *Tree {
	t := &Tree{}
	root.parent = NoNode
	root.children = nil
	t.nodes = append(t.nodes, root)
	return t
}

// Add appends node as the last child of parent and returns its ID
func (t *Tree) Add(parent NodeID, node PresentationNode) NodeID {
	id := NodeID(len(t.nodes))
	node.parent = parent
	node.children = nil
	t.nodes = append(t.nodes, node)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Len returns the number of nodes
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Root returns the root ID, or NoNode for an empty tree
func (t *Tree) Root() NodeID {
	if t.Len() == 0 {
		return NoNode
	}
	return 0
}

// Node returns the node for id. It panics on an ID from another tree.
func (t *Tree) Node(id NodeID) *PresentationNode {
	return &t.nodes[id]
}

// Children returns the ordered child IDs of id
func (t *Tree) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// Parent returns the parent of id, NoNode for the root
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Depth returns the number of ancestors of id
func (t *Tree) Depth(id NodeID) int {
	depth := 0
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		depth++
	}
	return depth
}

// Path rebuilds the identity path of id by following parent links
func (t *Tree) Path(id NodeID) IdentityPath {
	var rev []string
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		rev = append(rev, t.nodes[cur].Label)
	}
	path := make(IdentityPath, len(rev))
	for i, label := range rev {
		path[len(rev)-1-i] = label
	}
	return path
}

// ChildByLabel returns the first child of id carrying label
func (t *Tree) ChildByLabel(id NodeID, label string) (NodeID, bool) {
	for _, c := range t.nodes[id].children {
		if t.nodes[c].Label == label {
			return c, true
		}
	}
	return NoNode, false
}

// Find resolves an identity path, starting with the root label
func (t *Tree) Find(p IdentityPath) (NodeID, bool) {
	if t.Len() == 0 || len(p) == 0 || t.nodes[0].Label != p[0] {
		return NoNode, false
	}
	cur := NodeID(0)
	for _, label := range p[1:] {
		next, ok := t.ChildByLabel(cur, label)
		if !ok {
			return NoNode, false
		}
		cur = next
	}
	return cur, true
}

// SetExpanded sets the expansion flag of id
func (t *Tree) SetExpanded(id NodeID, expanded bool) {
	t.nodes[id].Expanded = expanded
}

// Toggle flips the expansion flag of id
func (t *Tree) Toggle(id NodeID) {
	t.nodes[id].Expanded = !t.nodes[id].Expanded
}

// SetLevel stores a logging level on id. On a rule this is its runtime
// logging level; on an import it is the explicitly stored value.
func (t *Tree) SetLevel(id NodeID, level LoggingLevel) error {
	if !level.Valid() {
		return fmt.Errorf("invalid logging level %d", int(level))
	}
	t.nodes[id].Level = level
	t.nodes[id].HasLevel = true
	return nil
}

// Walk visits nodes depth-first in child order. Returning false from fn
// skips the subtree below that node.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	if t.Len() == 0 {
		return
	}
	t.walk(0, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

// Flatten returns all visible nodes, i.e. those whose ancestors are expanded
func (t *Tree) Flatten() []NodeID {
	var out []NodeID
	t.Walk(func(id NodeID, _ int) bool {
		out = append(out, id)
		return t.nodes[id].Expanded
	})
	return out
}

// Aggregate derives a logging level for id from the rules below it: the
// common level if they all agree, Partly if they differ. Without descendant
// rules the node's own level is returned. It never modifies the tree.
func Aggregate(t *Tree, id NodeID) LoggingLevel {
	var (
		seen  bool
		level LoggingLevel
		mixed bool
	)
	for _, c := range t.Children(id) {
		t.WalkFrom(c, func(n NodeID) {
			node := t.Node(n)
			if !node.IsRule() || mixed {
				return
			}
			if !seen {
				seen, level = true, node.Level
			} else if node.Level != level {
				mixed = true
			}
		})
	}
	switch {
	case mixed:
		return LevelPartly
	case seen:
		return level
	default:
		return t.Node(id).Level
	}
}

// WalkFrom visits id and every node below it
func (t *Tree) WalkFrom(id NodeID, fn func(NodeID)) {
	t.walk(id, 0, func(n NodeID, _ int) bool {
		fn(n)
		return true
	})
}

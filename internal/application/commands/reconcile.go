package commands

import "rudiwatch/internal/domain"

// Capture merges the live attributes of tree into the memory tree rooted
// at mem and returns the memory root to keep using.
//
// A missing memory, or one whose root label differs from the tree's, is
// replaced by a fresh memory built from tree. Otherwise mem is updated in
// place. Children are matched by label within their parent only. Memory
// children that the tree does not mention are left untouched.
func Capture(tree *domain.Tree, mem *domain.MemoryNode) *domain.MemoryNode {
	if tree.Len() == 0 {
		return mem
	}

	root := tree.Node(tree.Root())
	if mem == nil || mem.Label != root.Label {
		mem = domain.NewMemoryNode(root.Label, newRecord(root))
	} else {
		updateRecord(&mem.Record, root)
	}

	captureChildren(tree, tree.Root(), mem)
	return mem
}

func captureChildren(tree *domain.Tree, id domain.NodeID, mem *domain.MemoryNode) {
	bound := make(map[string]bool, len(tree.Children(id)))
	for _, c := range tree.Children(id) {
		node := tree.Node(c)
		// duplicate sibling labels: the first one wins
		if bound[node.Label] {
			continue
		}
		bound[node.Label] = true

		child, created := mem.Ensure(node.Label, newRecord(node))
		if !created {
			updateRecord(&child.Record, node)
		}
		captureChildren(tree, c, child)
	}
}

func newRecord(n *domain.PresentationNode) domain.AttributeRecord {
	var rec domain.AttributeRecord
	updateRecord(&rec, n)
	return rec
}

// updateRecord copies the live attributes of n. An import without an
// explicitly stored level keeps the level remembered so far.
func updateRecord(rec *domain.AttributeRecord, n *domain.PresentationNode) {
	rec.Expanded = n.Expanded
	rec.IsImport = n.Kind == domain.KindImport
	if n.HasLevel {
		rec.Level = n.Level
	}
}

// Apply pushes remembered attributes onto a freshly built tree. Nodes
// without a memory entry keep the defaults they were built with. Only
// rules receive a logging level.
func Apply(tree *domain.Tree, mem *domain.MemoryNode) {
	if tree.Len() == 0 || mem == nil {
		return
	}
	if tree.Node(tree.Root()).Label != mem.Label {
		return
	}
	applyNode(tree, tree.Root(), mem)
}

func applyNode(tree *domain.Tree, id domain.NodeID, mem *domain.MemoryNode) {
	node := tree.Node(id)
	node.Expanded = mem.Record.Expanded
	if node.IsRule() {
		node.Level = mem.Record.Level
		node.HasLevel = true
	}

	bound := make(map[string]bool, len(tree.Children(id)))
	for _, c := range tree.Children(id) {
		label := tree.Node(c).Label
		if bound[label] {
			continue
		}
		child, ok := mem.Child(label)
		if !ok {
			continue
		}
		bound[label] = true
		applyNode(tree, c, child)
	}
}

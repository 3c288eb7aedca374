package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rudiwatch/internal/domain"
)

func rules(names ...string) *domain.Import {
	root := &domain.Import{Name: "main"}
	for _, n := range names {
		root.Nodes = append(root.Nodes, &domain.Rule{Name: n})
	}
	return root
}

func mustBuild(t *testing.T, root *domain.Import) *domain.Tree {
	t.Helper()
	tree, err := BuildHierarchy(root)
	require.NoError(t, err)
	return tree
}

func mustFind(t *testing.T, tree *domain.Tree, path string) *domain.PresentationNode {
	t.Helper()
	id, ok := tree.Find(domain.ParsePath(path))
	require.True(t, ok, "missing %s", path)
	return tree.Node(id)
}

func TestCapture_EmptyMemory(t *testing.T) {
	tree := mustBuild(t, rules("A", "B"))
	mustFind(t, tree, "main/B").Level = domain.LevelAlways

	mem := Capture(tree, nil)

	require.NotNil(t, mem)
	assert.Equal(t, "main", mem.Label)
	assert.True(t, mem.Record.IsImport)
	assert.True(t, mem.Record.Expanded)

	a, ok := mem.Lookup(domain.ParsePath("main/A"))
	require.True(t, ok)
	assert.Equal(t, domain.AttributeRecord{Level: domain.LevelNever}, a.Record)

	b, ok := mem.Lookup(domain.ParsePath("main/B"))
	require.True(t, ok)
	assert.Equal(t, domain.AttributeRecord{Level: domain.LevelAlways}, b.Record)
}

func TestReconcile_RemovedRuleIsRememberedAndRestored(t *testing.T) {
	first := mustBuild(t, rules("A", "B"))
	mustFind(t, first, "main/B").Level = domain.LevelAlways
	mem := Capture(first, nil)

	// B disappears from the next compile
	second := mustBuild(t, rules("A"))
	mem = Capture(first, mem)
	Apply(second, mem)
	assert.Equal(t, domain.LevelNever, mustFind(t, second, "main/A").Level)

	b, ok := mem.Lookup(domain.ParsePath("main/B"))
	require.True(t, ok, "memory keeps B")
	assert.Equal(t, domain.LevelAlways, b.Record.Level)

	// and comes back later
	mem = Capture(second, mem)
	third := mustBuild(t, rules("A", "B"))
	Apply(third, mem)
	assert.Equal(t, domain.LevelAlways, mustFind(t, third, "main/B").Level)
}

func TestReconcile_RoundTrip(t *testing.T) {
	tree := mustBuild(t, sampleModel())
	mustFind(t, tree, "main/Sub").Expanded = true
	mustFind(t, tree, "main/Sub/c").Expanded = true
	mustFind(t, tree, "main/Sub/c").Level = domain.LevelIfFalse
	mustFind(t, tree, "main/A").Level = domain.LevelAlways
	mustFind(t, tree, "main").Expanded = false

	// unrelated memory content must not leak into the result
	stale := domain.NewMemoryNode("main", domain.AttributeRecord{Expanded: true, IsImport: true})
	stale.Ensure("Gone", domain.AttributeRecord{Level: domain.LevelIfTrue})

	mem := Capture(tree, stale)
	rebuilt := mustBuild(t, sampleModel())
	Apply(rebuilt, mem)

	tree.Walk(func(id domain.NodeID, _ int) bool {
		want := tree.Node(id)
		got := mustFind(t, rebuilt, tree.Path(id).String())
		assert.Equal(t, want.Expanded, got.Expanded, tree.Path(id).String())
		if want.IsRule() {
			assert.Equal(t, want.Level, got.Level, tree.Path(id).String())
		}
		return true
	})
}

func TestCapture_Idempotent(t *testing.T) {
	tree := mustBuild(t, sampleModel())
	mustFind(t, tree, "main/Sub").Expanded = true

	once := Capture(tree, nil).Clone()
	twice := Capture(tree, once.Clone())

	assert.True(t, once.Equal(twice))
}

func TestCapture_NeverForgets(t *testing.T) {
	mem := Capture(mustBuild(t, sampleModel()), nil)
	before := mem.Count()

	// a tree that omits everything below the root
	mem = Capture(mustBuild(t, rules()), mem)
	assert.Equal(t, before, mem.Count())
	_, ok := mem.Lookup(domain.ParsePath("main/Sub/c/c1"))
	assert.True(t, ok)
}

func TestCapture_RootLabelChangeDiscardsMemory(t *testing.T) {
	mem := Capture(mustBuild(t, sampleModel()), nil)

	other := mustBuild(t, &domain.Import{Name: "other", Nodes: []domain.StructuralNode{&domain.Rule{Name: "x"}}})
	mem = Capture(other, mem)

	assert.Equal(t, "other", mem.Label)
	assert.Equal(t, 2, mem.Count())
}

func TestCapture_ImportKeepsRememberedLevel(t *testing.T) {
	tree := mustBuild(t, sampleModel())
	sub, _ := tree.Find(domain.ParsePath("main/Sub"))
	require.NoError(t, tree.SetLevel(sub, domain.LevelIfTrue))
	mem := Capture(tree, nil)

	// a rebuilt tree has no explicit import level
	mem = Capture(mustBuild(t, sampleModel()), mem)

	node, ok := mem.Lookup(domain.ParsePath("main/Sub"))
	require.True(t, ok)
	assert.Equal(t, domain.LevelIfTrue, node.Record.Level)
	assert.True(t, node.Record.IsImport)
}

func TestApply_ImportLevelNotApplied(t *testing.T) {
	mem := domain.NewMemoryNode("main", domain.AttributeRecord{Expanded: true, IsImport: true})
	mem.Ensure("Sub", domain.AttributeRecord{Expanded: true, Level: domain.LevelAlways, IsImport: true})

	tree := mustBuild(t, sampleModel())
	Apply(tree, mem)

	sub := mustFind(t, tree, "main/Sub")
	assert.True(t, sub.Expanded)
	assert.False(t, sub.HasLevel)
	// children of Sub have no memory and keep their built defaults
	assert.Equal(t, domain.LevelIfTrue, mustFind(t, tree, "main/Sub/c").Level)
}

func TestApply_DuplicateSiblingsFirstMatchWins(t *testing.T) {
	mem := domain.NewMemoryNode("main", domain.AttributeRecord{Expanded: true, IsImport: true})
	mem.Ensure("A", domain.AttributeRecord{Level: domain.LevelAlways})

	tree := mustBuild(t, rules("A", "A"))
	Apply(tree, mem)

	kids := tree.Children(tree.Root())
	require.Len(t, kids, 2)
	assert.Equal(t, domain.LevelAlways, tree.Node(kids[0]).Level)
	assert.Equal(t, domain.LevelNever, tree.Node(kids[1]).Level, "second duplicate keeps its default")
}

func TestApply_ForeignRootIgnored(t *testing.T) {
	mem := domain.NewMemoryNode("other", domain.AttributeRecord{Expanded: false, IsImport: true})
	tree := mustBuild(t, rules("A"))

	Apply(tree, mem)
	Apply(tree, nil)
	Apply(nil, mem)

	assert.True(t, tree.Node(tree.Root()).Expanded)
}

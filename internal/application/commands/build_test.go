package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
)

type mockSource struct {
	model *domain.RuleModel
	err   error
}

func (m *mockSource) Load(context.Context) (*domain.RuleModel, error) {
	return m.model, m.err
}

func sampleModel() *domain.Import {
	return &domain.Import{
		Name: "main",
		File: "/p/main.rudi",
		Nodes: []domain.StructuralNode{
			&domain.Rule{Name: "A", Line: 3, Level: domain.LevelNever},
			&domain.Import{Name: "Sub", File: "/p/Sub.rudi", Line: 7, Nodes: []domain.StructuralNode{
				&domain.Rule{Name: "c", Line: 1, Level: domain.LevelIfTrue, Nodes: []domain.StructuralNode{
					&domain.Rule{Name: "c1", Line: 2, Level: domain.LevelAlways},
				}},
			}},
		},
	}
}

func TestBuildHierarchy_MirrorsShape(t *testing.T) {
	tree, err := BuildHierarchy(sampleModel())
	require.NoError(t, err)
	require.Equal(t, 5, tree.Len())

	root := tree.Node(tree.Root())
	assert.Equal(t, "main", root.Label)
	assert.True(t, root.Expanded, "root starts expanded")
	assert.False(t, root.HasLevel)

	a, ok := tree.Find(domain.ParsePath("main/A"))
	require.True(t, ok)
	assert.True(t, tree.Node(a).IsRule())
	assert.False(t, tree.Node(a).Expanded)
	assert.Equal(t, 3, tree.Node(a).Line)

	sub, ok := tree.Find(domain.ParsePath("main/Sub"))
	require.True(t, ok)
	assert.Equal(t, domain.KindImport, tree.Node(sub).Kind)
	assert.Equal(t, "/p/Sub.rudi", tree.Node(sub).File)
	assert.False(t, tree.Node(sub).HasLevel, "imports carry no level until one is stored")

	c1, ok := tree.Find(domain.ParsePath("main/Sub/c/c1"))
	require.True(t, ok)
	assert.Equal(t, domain.LevelAlways, tree.Node(c1).Level)
	assert.True(t, tree.Node(c1).HasLevel)
}

func TestBuildHierarchy_PreservesChildOrder(t *testing.T) {
	root := &domain.Import{Name: "main", Nodes: []domain.StructuralNode{
		&domain.Rule{Name: "z"},
		&domain.Rule{Name: "a"},
		&domain.Rule{Name: "m"},
	}}
	tree, err := BuildHierarchy(root)
	require.NoError(t, err)

	var labels []string
	for _, c := range tree.Children(tree.Root()) {
		labels = append(labels, tree.Node(c).Label)
	}
	assert.Equal(t, []string{"z", "a", "m"}, labels)
}

func TestBuildHierarchy_Inconsistent(t *testing.T) {
	tests := []struct {
		name string
		root *domain.Import
	}{
		{"nil root", nil},
		{"nil rule child", &domain.Import{Name: "main", Nodes: []domain.StructuralNode{(*domain.Rule)(nil)}}},
		{"nil interface child", &domain.Import{Name: "main", Nodes: []domain.StructuralNode{nil}}},
		{"deep nil import", &domain.Import{Name: "main", Nodes: []domain.StructuralNode{
			&domain.Rule{Name: "ok", Nodes: []domain.StructuralNode{(*domain.Import)(nil)}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := BuildHierarchy(tt.root)
			assert.Nil(t, tree, "no partial tree")
			assert.True(t, errors.Is(err, application.ErrStructuralInconsistency))
		})
	}
}

func TestBuildTreeCommand_Execute(t *testing.T) {
	model := &domain.RuleModel{Root: &domain.Import{Name: "main", Nodes: []domain.StructuralNode{
		&domain.Rule{Name: "A"},
		&domain.Rule{Name: "A"},
	}}}

	res, err := NewBuildTreeCommand(&mockSource{model: model}).Execute(context.Background())
	require.NoError(t, err)
	assert.Same(t, model, res.Model)
	assert.Equal(t, 3, res.Tree.Len())
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, "main/A", res.Duplicates[0].String())
}

func TestBuildTreeCommand_SourceError(t *testing.T) {
	boom := errors.New("compile failed")

	_, err := NewBuildTreeCommand(&mockSource{err: boom}).Execute(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = NewBuildTreeCommand(&mockSource{model: &domain.RuleModel{}}).Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrStructuralInconsistency)
}

package ruleloc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rudiwatch/internal/adapters/filesystem"
	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
)

const sampleLoc = `Main:
  Greeting: 12
  Dialogue:
    ImportWasInLine: 3
    Ask:
      RuleWasInLine: 8
      AskAgain: 14
    Bye: 20
  Broken: "syntax error near if"
  Empty:
  Alpha: 30
`

func labels(nodes []domain.StructuralNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Label())
	}
	return out
}

func TestParser_Parse(t *testing.T) {
	files := map[string]string{"Main": "/r/Main.rudi", "Dialogue": "/r/d/Dialogue.rudi"}
	p := NewParser(func(label string) (string, bool) {
		f, ok := files[label]
		return f, ok
	}, nil)

	model, err := p.Parse([]byte(sampleLoc))
	require.NoError(t, err)

	root := model.Root
	assert.Equal(t, "Main", root.Name)
	assert.Equal(t, "/r/Main.rudi", model.MainFile)
	assert.Equal(t, []string{"/r/d/Dialogue.rudi"}, model.ImportFiles)
	assert.Equal(t, []string{"Greeting", "Dialogue", "Alpha"}, labels(root.Nodes), "document order, markers skipped")

	greeting, ok := root.Nodes[0].(*domain.Rule)
	require.True(t, ok)
	assert.Equal(t, 12, greeting.Line)
	assert.Equal(t, domain.LevelNever, greeting.Level)

	dialogue, ok := root.Nodes[1].(*domain.Import)
	require.True(t, ok)
	assert.Equal(t, 3, dialogue.Line)
	assert.Equal(t, "/r/d/Dialogue.rudi", dialogue.File)
	assert.Equal(t, []string{"Ask", "Bye"}, labels(dialogue.Nodes))

	ask, ok := dialogue.Nodes[0].(*domain.Rule)
	require.True(t, ok)
	assert.Equal(t, 8, ask.Line)
	assert.Equal(t, []string{"AskAgain"}, labels(ask.Nodes))
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"not a mapping", "- Main\n"},
		{"scalar main", "Main: 3\n"},
		{"sequence child", "Main:\n  Rules:\n    - a\n    - b\n"},
		{"bad import line", "Main:\n  Sub:\n    ImportWasInLine: three\n"},
		{"bad rule line", "Main:\n  R:\n    RuleWasInLine: [1]\n"},
		{"invalid yaml", "Main: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil, nil).Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, application.ErrStructuralInconsistency)
		})
	}
}

func TestParser_MultipleMainFilesUsesFirst(t *testing.T) {
	model, err := NewParser(nil, nil).Parse([]byte("First:\n  a: 1\nSecond:\n  b: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, "First", model.Root.Name)
	assert.Equal(t, []string{"a"}, labels(model.Root.Nodes))
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	rudi := filepath.Join(dir, "src", "main", "rudi")
	require.NoError(t, os.MkdirAll(filepath.Join(rudi, "d"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(rudi, "Main.rudi"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(rudi, "d", "Dialogue.rudi"), nil, 0644))
	locFile := filepath.Join(dir, "demoRuleLoc.yml")
	require.NoError(t, os.WriteFile(locFile, []byte(sampleLoc), 0644))

	src := NewSource(locFile, filepath.Join(rudi, "Wrapper.rudi"), filesystem.NewRepository(rudi, ".rudi"), nil)
	model, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(rudi, "Main.rudi"), model.MainFile)
	assert.Equal(t, filepath.Join(rudi, "Wrapper.rudi"), model.WrapperFile)
	assert.Equal(t, []string{filepath.Join(rudi, "d", "Dialogue.rudi")}, model.ImportFiles)

	// every load hands out a fresh graph
	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, model.Root, again.Root)
}

func TestSource_LoadMissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "none.yml"), "", filesystem.NewRepository(t.TempDir(), ".rudi"), nil)

	_, err := src.Load(context.Background())
	assert.ErrorIs(t, err, application.ErrNotFound)
}

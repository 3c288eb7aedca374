package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// newProject lays out a project "demo" and returns its dir and rudi folder
func newProject(t *testing.T) (string, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "demo")
	rudi := filepath.Join(dir, "src", "main", "rudi")
	writeFile(t, filepath.Join(rudi, "Main.rudi"), "")
	writeFile(t, filepath.Join(rudi, "dialogue", "Dialogue.rudi"), "")
	writeFile(t, filepath.Join(rudi, "Old.rudi"), "")
	return dir, rudi
}

func TestSeed(t *testing.T) {
	dir, rudi := newProject(t)
	writeFile(t, filepath.Join(dir, "demoRuleLoc.yml"), `Main:
  Greeting: 12
  Dialogue:
    ImportWasInLine: 3
    Bye: 20
`)

	p, err := Open(dir, LogSilent)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	require.NoError(t, p.Seed(context.Background()))
	assert.Equal(t, 4, p.Session.Tree().Len())

	tests := []struct {
		path string
		want domain.Usage
	}{
		{filepath.Join(rudi, "Main.rudi"), domain.UsageMainFile},
		{filepath.Join(rudi, "dialogue", "Dialogue.rudi"), domain.UsageUsed},
		{filepath.Join(rudi, "Old.rudi"), domain.UsageUnused},
		{filepath.Join(rudi, "dialogue"), domain.UsageFolder},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			got, ok, err := p.Index.Get(tt.path)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeed_WithoutRuleLocation(t *testing.T) {
	dir, rudi := newProject(t)

	p, err := Open(dir, LogSilent)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	err = p.Seed(context.Background())
	assert.ErrorIs(t, err, application.ErrNotFound)
	assert.Nil(t, p.Session.Tree())

	got, ok, err := p.Index.Get(filepath.Join(rudi, "Main.rudi"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.UsageUnknown, got, "files stay unknown until a model exists")
}

func TestOpen_LogFile(t *testing.T) {
	dir, _ := newProject(t)

	p, err := Open(dir, LogFile)
	require.NoError(t, err)
	p.Log.Error("hello")
	require.NoError(t, p.Close())

	data, err := os.ReadFile(p.Config.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestOpen_MissingProject(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"), LogSilent)
	assert.Error(t, err)
}

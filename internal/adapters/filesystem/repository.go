package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceFile is one entry below the rudi folder
type SourceFile struct {
	Path    string
	IsDir   bool
	ModTime time.Time
}

// Repository reads the rule source tree of a project
type Repository struct {
	root string
	ext  string
}

// NewRepository creates a repository over the rudi folder at root that
// tracks files ending in ext
func NewRepository(root, ext string) *Repository {
	// Expand ~ to home directory
	if strings.HasPrefix(root, "~") {
		home, _ := os.UserHomeDir()
		root = filepath.Join(home, root[1:])
	}
	return &Repository{root: filepath.Clean(root), ext: ext}
}

// Root returns the rudi folder
func (r *Repository) Root() string {
	return r.root
}

// Extension returns the tracked source extension
func (r *Repository) Extension() string {
	return r.ext
}

// IsSource reports whether path names a tracked source file
func (r *Repository) IsSource(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, r.ext) && !strings.HasPrefix(name, ".")
}

// ListSources returns every folder and tracked file below the root, in
// lexical order. The root itself is not listed.
func (r *Repository) ListSources() ([]SourceFile, error) {
	var out []SourceFile
	err := Walk(r.root, Everything, func(path string, info os.FileInfo) error {
		if path == r.root {
			return nil
		}
		if info.IsDir() || r.IsSource(path) {
			out = append(out, SourceFile{Path: path, IsDir: info.IsDir(), ModTime: info.ModTime()})
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return out, err
}

// Dirs returns the root and every folder below it
func (r *Repository) Dirs() ([]string, error) {
	var out []string
	err := Walk(r.root, Everything, func(path string, info os.FileInfo) error {
		if info.IsDir() {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// FindSource locates the file that defines label, i.e. <label><ext>
// anywhere below the root. The first match in lexical walk order wins.
func (r *Repository) FindSource(label string) (string, bool) {
	want := label + r.ext
	var found string
	_ = Walk(r.root, Everything, func(path string, info os.FileInfo) error {
		if !info.IsDir() && info.Name() == want {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found, found != ""
}

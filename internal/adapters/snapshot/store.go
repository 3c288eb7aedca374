// Package snapshot stores attribute memory trees as YAML files.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"rudiwatch/internal/adapters/filesystem"
	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"
)

// DefaultRecentLimit is used when ListRecent gets a non-positive limit
const DefaultRecentLimit = 10

const tempPattern = ".snapshot-*.tmp"

// Store implements ports.SnapshotStore on the local filesystem
type Store struct{}

var _ ports.SnapshotStore = (*Store)(nil)

// NewStore creates a new snapshot store
func NewStore() *Store {
	return &Store{}
}

// record is the on-disk shape of one memory node
type record struct {
	Label    string    `yaml:"label"`
	Expanded bool      `yaml:"expanded"`
	Logging  string    `yaml:"logging"`
	Import   bool      `yaml:"import"`
	Children []*record `yaml:"children,omitempty"`
}

// Save writes root to path through a temporary file in the same
// directory, so the previous file survives any failure.
func (s *Store) Save(root *domain.MemoryNode, path string) error {
	if root == nil {
		return &application.IOError{Op: "save", Path: path, Err: errors.New("memory is empty")}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(toRecord(root)); err != nil {
		return &application.IOError{Op: "encode", Path: path, Err: err}
	}
	if err := enc.Close(); err != nil {
		return &application.IOError{Op: "encode", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &application.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return &application.IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &application.IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &application.IOError{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &application.IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &application.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func toRecord(n *domain.MemoryNode) *record {
	r := &record{
		Label:    n.Label,
		Expanded: n.Record.Expanded,
		Logging:  n.Record.Level.String(),
		Import:   n.Record.IsImport,
	}
	for _, c := range n.Children() {
		r.Children = append(r.Children, toRecord(c))
	}
	return r
}

// Load reads the memory tree stored at path
func (s *Store) Load(path string) (*domain.MemoryNode, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("snapshot %s: %w", path, application.ErrNotFound)
	}
	if err != nil {
		return nil, &application.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var doc yaml.Node
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &application.ParseError{Path: path, Reason: "empty snapshot"}
		}
		return nil, &application.ParseError{Path: path, Reason: err.Error()}
	}
	if len(doc.Content) == 0 {
		return nil, &application.ParseError{Path: path, Reason: "empty snapshot"}
	}
	return fromNode(path, doc.Content[0])
}

// nodeRecord decodes one node while keeping the children as raw nodes
// so errors can point at their line
type nodeRecord struct {
	Label    string      `yaml:"label"`
	Expanded bool        `yaml:"expanded"`
	Logging  string      `yaml:"logging"`
	Import   bool        `yaml:"import"`
	Children []yaml.Node `yaml:"children"`
}

func fromNode(path string, n *yaml.Node) (*domain.MemoryNode, error) {
	if n.Kind != yaml.MappingNode {
		return nil, &application.ParseError{Path: path, Line: n.Line, Reason: "expected a mapping"}
	}

	var nr nodeRecord
	if err := n.Decode(&nr); err != nil {
		return nil, &application.ParseError{Path: path, Line: n.Line, Reason: err.Error()}
	}
	if nr.Label == "" {
		return nil, &application.ParseError{Path: path, Line: n.Line, Reason: "missing label"}
	}
	level, err := domain.ParseLoggingLevel(nr.Logging)
	if err != nil {
		return nil, &application.ParseError{Path: path, Line: n.Line, Reason: err.Error()}
	}

	mem := domain.NewMemoryNode(nr.Label, domain.AttributeRecord{
		Expanded: nr.Expanded,
		Level:    level,
		IsImport: nr.Import,
	})
	for i := range nr.Children {
		child, err := fromNode(path, &nr.Children[i])
		if err != nil {
			return nil, err
		}
		if err := mem.Attach(child); err != nil {
			return nil, &application.ParseError{Path: path, Line: nr.Children[i].Line, Reason: err.Error()}
		}
	}
	return mem, nil
}

// ListRecent returns up to limit snapshot files below dir, newest first.
// Ties on modification time are broken by path.
func (s *Store) ListRecent(dir string, limit int) ([]domain.SnapshotEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var entries []domain.SnapshotEntry
	err := filesystem.Walk(dir, filesystem.WalkOptions{
		IgnoreDirs:     []string{},
		IgnorePatterns: []string{tempPattern},
	}, func(path string, info os.FileInfo) error {
		if !info.IsDir() {
			entries = append(entries, domain.SnapshotEntry{Path: path, ModTime: info.ModTime()})
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &application.IOError{Op: "list", Path: dir, Err: err}
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].ModTime.After(entries[j].ModTime)
		}
		return entries[i].Path < entries[j].Path
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

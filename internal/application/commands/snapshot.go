package commands

import (
	"fmt"
	"path/filepath"

	"rudiwatch/internal/application"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"
)

// SaveSnapshotCommand writes a memory tree to a named file in a snapshot directory
type SaveSnapshotCommand struct {
	store  ports.SnapshotStore
	dir    string
	name   string
	memory *domain.MemoryNode
}

// NewSaveSnapshotCommand creates a new SaveSnapshotCommand
func NewSaveSnapshotCommand(store ports.SnapshotStore, dir, name string, memory *domain.MemoryNode) *SaveSnapshotCommand {
	return &SaveSnapshotCommand{
		store:  store,
		dir:    dir,
		name:   name,
		memory: memory,
	}
}

// Validate checks the command can run
func (c *SaveSnapshotCommand) Validate() error {
	if err := application.ValidateSnapshotName(c.name); err != nil {
		return err
	}
	if c.memory == nil {
		return &application.ValidationError{Field: "memory", Message: "nothing to save, memory is empty"}
	}
	return nil
}

// Execute runs the save command and returns the written path
func (c *SaveSnapshotCommand) Execute() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	path := filepath.Join(c.dir, c.name)
	if err := c.store.Save(c.memory, path); err != nil {
		return "", fmt.Errorf("saving snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshotCommand reads a memory tree from a snapshot file
type LoadSnapshotCommand struct {
	store ports.SnapshotStore
	path  string
}

// NewLoadSnapshotCommand creates a new LoadSnapshotCommand
func NewLoadSnapshotCommand(store ports.SnapshotStore, path string) *LoadSnapshotCommand {
	return &LoadSnapshotCommand{store: store, path: path}
}

// Validate checks the command can run
func (c *LoadSnapshotCommand) Validate() error {
	return application.ValidateRequired("snapshotPath", c.path)
}

// Execute runs the load command
func (c *LoadSnapshotCommand) Execute() (*domain.MemoryNode, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	mem, err := c.store.Load(c.path)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return mem, nil
}

// ListSnapshotsCommand lists the most recently modified snapshot files
type ListSnapshotsCommand struct {
	store ports.SnapshotStore
	dir   string
	limit int
}

// NewListSnapshotsCommand creates a new ListSnapshotsCommand
func NewListSnapshotsCommand(store ports.SnapshotStore, dir string, limit int) *ListSnapshotsCommand {
	return &ListSnapshotsCommand{store: store, dir: dir, limit: limit}
}

// Execute runs the list command
func (c *ListSnapshotsCommand) Execute() ([]domain.SnapshotEntry, error) {
	return c.store.ListRecent(c.dir, c.limit)
}

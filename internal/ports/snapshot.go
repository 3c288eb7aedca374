package ports

import "rudiwatch/internal/domain"

// SnapshotStore persists attribute memory trees as named files
type SnapshotStore interface {
	// Save writes root to path atomically. A failed save leaves any
	// previous file at path untouched.
	Save(root *domain.MemoryNode, path string) error

	// Load reads the tree stored at path
	Load(path string) (*domain.MemoryNode, error)

	// ListRecent returns up to limit snapshot files below dir, most
	// recently modified first. A missing dir yields an empty list.
	ListRecent(dir string, limit int) ([]domain.SnapshotEntry, error)
}

package ports

import "rudiwatch/internal/domain"

// UsageIndex keeps the file usage registry on disk so that it can be
// inspected without a running watcher.
type UsageIndex interface {
	Close() error

	// List returns every recorded path, sorted by path
	List() ([]domain.UsageChange, error)

	// BeginTx starts a batch of updates
	BeginTx() (UsageTx, error)
}

// UsageTx represents a transaction for atomic index updates
type UsageTx interface {
	Upsert(change domain.UsageChange) error
	Delete(path string) error

	// Transaction control
	Commit() error
	Rollback() error
}

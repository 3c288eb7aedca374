package sqlite

import (
	"database/sql"
	"time"

	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"
)

// indexTx implements ports.UsageTx
type indexTx struct {
	tx *sql.Tx
}

// Ensure indexTx implements UsageTx
var _ ports.UsageTx = (*indexTx)(nil)

// Upsert inserts or updates the usage of a path
func (t *indexTx) Upsert(change domain.UsageChange) error {
	_, err := t.tx.Exec(`
		INSERT OR REPLACE INTO files (path, usage, updated)
		VALUES (?, ?, ?)
	`, change.Path, change.Usage.String(), time.Now().Unix())
	return err
}

// Delete removes a path and everything recorded below it
func (t *indexTx) Delete(path string) error {
	_, err := t.tx.Exec(`DELETE FROM files WHERE path = ? OR path LIKE ? ESCAPE '\'`,
		path, escapeLike(path)+"/%")
	return err
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	return t.tx.Rollback()
}

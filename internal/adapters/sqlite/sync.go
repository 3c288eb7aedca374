package sqlite

import (
	"strings"
	"time"

	"rudiwatch/internal/domain"
)

// SyncStats describes one full rewrite of the index
type SyncStats struct {
	Written  int
	Duration time.Duration
}

// SyncFull replaces the index content with entries in one transaction
func (idx *Index) SyncFull(entries []domain.UsageChange) (stats *SyncStats, err error) {
	start := time.Now()
	stats = &SyncStats{}

	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec(`DELETE FROM files`); err != nil {
		return nil, err
	}

	itx := &indexTx{tx: tx}
	for _, e := range entries {
		if err = itx.Upsert(e); err != nil {
			return nil, err
		}
		stats.Written++
	}

	if _, err = tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('last_sync_time', ?)`,
		time.Now().Unix()); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// LastSync returns when SyncFull last completed, zero if never
func (idx *Index) LastSync() time.Time {
	var unix int64
	if err := idx.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_sync_time'`).Scan(&unix); err != nil {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// escapeLike escapes LIKE wildcards in a literal prefix
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

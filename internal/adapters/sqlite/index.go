package sqlite

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Index implements ports.UsageIndex using SQLite
type Index struct {
	db          *sql.DB
	projectPath string
	dbPath      string
}

// Ensure Index implements UsageIndex
var _ ports.UsageIndex = (*Index)(nil)

// NewIndex creates a new SQLite index
func NewIndex() *Index {
	return &Index{}
}

// Open initializes the index stored at dbPath for the given project
func (idx *Index) Open(projectPath, dbPath string) error {
	idx.projectPath = projectPath
	idx.dbPath = dbPath

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", idx.dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			usage TEXT NOT NULL,
			updated INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_files_usage ON files(usage);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup database: %w", err)
	}

	if idx.NeedsFullRebuild() {
		if _, err := db.Exec(`DELETE FROM files`); err != nil {
			db.Close()
			return fmt.Errorf("failed to reset index: %w", err)
		}
	}

	if err := idx.updateMeta(); err != nil {
		db.Close()
		return fmt.Errorf("failed to update metadata: %w", err)
	}

	return nil
}

// Close closes the database connection
func (idx *Index) Close() error {
	if idx.db != nil {
		return idx.db.Close()
	}
	return nil
}

// NeedsFullRebuild returns true if the stored rows belong to another
// schema or project
func (idx *Index) NeedsFullRebuild() bool {
	var version, projectHash string

	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'project_path_hash'").Scan(&projectHash)

	return version != schemaVersion || projectHash != hashProjectPath(idx.projectPath)
}

// hashProjectPath returns a short hash of the project path
func hashProjectPath(projectPath string) string {
	h := sha256.Sum256([]byte(projectPath))
	return hex.EncodeToString(h[:8]) // First 8 bytes = 16 hex chars
}

func (idx *Index) updateMeta() error {
	_, err := idx.db.Exec(`
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('project_path_hash', ?);
	`, schemaVersion, hashProjectPath(idx.projectPath))
	return err
}

// Get retrieves the usage of one path
func (idx *Index) Get(path string) (domain.Usage, bool, error) {
	var usage string
	err := idx.db.QueryRow(`SELECT usage FROM files WHERE path = ?`, path).Scan(&usage)
	if err == sql.ErrNoRows {
		return domain.UsageUnknown, false, nil
	}
	if err != nil {
		return domain.UsageUnknown, false, err
	}
	return domain.ParseUsage(usage), true, nil
}

// List returns every recorded path, sorted by path
func (idx *Index) List() ([]domain.UsageChange, error) {
	rows, err := idx.db.Query(`SELECT path, usage FROM files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UsageChange
	for rows.Next() {
		var c domain.UsageChange
		var usage string
		if err := rows.Scan(&c.Path, &usage); err != nil {
			return nil, err
		}
		c.Usage = domain.ParseUsage(usage)
		out = append(out, c)
	}

	return out, rows.Err()
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.UsageTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	return &indexTx{tx: tx}, nil
}

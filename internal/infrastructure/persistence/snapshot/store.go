// Package snapshot provides the local durable mirror of the in-memory
// collections. Each collection is serialized whole and written under a single
// key, so the store always holds a complete, self-consistent copy as of the
// last local write.
package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a SQLite-backed key/value store for collection snapshots.
type Store struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewStore opens (and if necessary creates) the snapshot database at path.
func NewStore(path string, logger *logging.ChanneledLogger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS snapshots (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	logger.Snapshot().Info("Snapshot store ready", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// Read returns the stored value for key. The second return reports whether a
// snapshot exists for the key.
func (s *Store) Read(key string) ([]byte, bool, error) {
	start := time.Now()

	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			s.logger.Snapshot().Debug("No snapshot for key", "key", key)
			return nil, false, nil
		}
		s.logger.Snapshot().Error("Snapshot read failed", "error", err.Error(), "key", key)
		return nil, false, err
	}

	s.logger.Snapshot().Debug("Snapshot read", "key", key, "bytes", len(value), "duration", time.Since(start))
	return []byte(value), true, nil
}

// Write replaces the stored value for key with the full serialized collection.
func (s *Store) Write(key string, value []byte) error {
	start := time.Now()

	const query = `
		INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := s.db.Exec(query, key, string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		s.logger.Snapshot().Error("Snapshot write failed", "error", err.Error(), "key", key)
		return err
	}

	s.logger.Snapshot().Info("Snapshot written", "key", key, "bytes", len(value), "duration", time.Since(start))
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	kind       TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      BLOB    NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (kind, key)
);`

// Store is a key/value response cache partitioned by kind
type Store struct {
	db     *sql.DB
	path   string
	maxAge time.Duration
}

// Open opens or creates the cache database at path. Entries older than
// maxAge are ignored; zero keeps entries forever.
func Open(path string, maxAge time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	// SQLite serializes writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Store{db: db, path: path, maxAge: maxAge}, nil
}

// Path returns the database file
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached value for kind/key
func (s *Store) Get(kind, key string) ([]byte, bool, error) {
	var value []byte
	var created int64

	err := s.db.QueryRow(`SELECT value, created_at FROM responses WHERE kind = ? AND key = ?`, kind, key).
		Scan(&value, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup failed: %w", err)
	}

	if s.maxAge > 0 && time.Since(time.Unix(created, 0)) > s.maxAge {
		return nil, false, nil
	}
	return value, true, nil
}

// Put stores value under kind/key, replacing any previous entry
func (s *Store) Put(kind, key string, value []byte) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO responses (kind, key, value, created_at) VALUES (?, ?, ?, ?)`,
		kind, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Stats returns the number of entries and their total size per kind
func (s *Store) Stats() (map[string]Stat, error) {
	rows, err := s.db.Query(`SELECT kind, COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM responses GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("cache stats failed: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]Stat)
	for rows.Next() {
		var kind string
		var st Stat
		if err := rows.Scan(&kind, &st.Entries, &st.Bytes); err != nil {
			return nil, fmt.Errorf("cache stats failed: %w", err)
		}
		stats[kind] = st
	}
	return stats, rows.Err()
}

// Stat summarizes one kind of cached response
type Stat struct {
	Entries int
	Bytes   int64
}

// Clear removes all entries
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM responses`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Package history persists REPL evaluations in a SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded evaluation.
type Entry struct {
	ID     int64
	Source string
	Result float64
	At     time.Time
}

// Store is a SQLite-backed history of REPL evaluations.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) a history database at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		result REAL NOT NULL,
		at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenDefault opens the history database at its default location,
// ~/.weft/history.db, honoring the WEFT_HISTORY_DB override.
func OpenDefault() (*Store, error) {
	path := os.Getenv("WEFT_HISTORY_DB")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home dir: %w", err)
		}
		path = filepath.Join(home, ".weft", "history.db")
	}
	return Open(path)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Append records one evaluation.
func (s *Store) Append(source string, result float64) error {
	_, err := s.db.Exec(
		"INSERT INTO history (source, result, at) VALUES (?, ?, ?)",
		source, result, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("appending history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		"SELECT id, source, result, at FROM history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Source, &e.Result, &at); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.At = time.Unix(at, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes all but the newest keep entries.
func (s *Store) Prune(keep int) error {
	_, err := s.db.Exec(
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY id DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}
	return nil
}

// Package sqlite caches upstream commit listings in a local SQLite database
// so repeated comparisons of the same branch do not refetch full history.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/branchscope/branchscope/internal/domain"
)

// Store is a TTL'd commit cache backed by SQLite. Entries are keyed by the
// opaque key the usecase derives from repository, token, and branch, so one
// user's cache never answers another user's request.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// NewStore opens (or creates) the cache database at path. Entries older than
// ttl are treated as absent and deleted on read.
func NewStore(path string, ttl time.Duration) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	store := &Store{db: db, ttl: ttl}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return store, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commit_cache (
		cache_key TEXT PRIMARY KEY,
		payload   TEXT NOT NULL,
		stored_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// GetCommits returns the cached commit list for key, or ok=false when the
// entry is missing or expired. Expired entries are removed.
func (s *Store) GetCommits(ctx context.Context, key string) ([]domain.Commit, bool) {
	var payload string
	var storedAt int64

	row := s.db.QueryRowContext(ctx,
		"SELECT payload, stored_at FROM commit_cache WHERE cache_key = ?", key)
	if err := row.Scan(&payload, &storedAt); err != nil {
		return nil, false
	}

	if s.ttl > 0 && time.Since(time.Unix(storedAt, 0)) > s.ttl {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM commit_cache WHERE cache_key = ?", key)
		return nil, false
	}

	var commits []domain.Commit
	if err := json.Unmarshal([]byte(payload), &commits); err != nil {
		return nil, false
	}
	return commits, true
}

// SetCommits stores the commit list for key, replacing any previous entry.
func (s *Store) SetCommits(ctx context.Context, key string, commits []domain.Commit) error {
	payload, err := json.Marshal(commits)
	if err != nil {
		return fmt.Errorf("encode commits: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commit_cache (cache_key, payload, stored_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at
	`, key, string(payload), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store commits: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchscope/branchscope/internal/adapter/cache/sqlite"
	"github.com/branchscope/branchscope/internal/domain"
)

func setupTestStore(t *testing.T, ttl time.Duration) *sqlite.Store {
	t.Helper()

	// Use in-memory database for testing
	s, err := sqlite.NewStore(":memory:", ttl)
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func sampleCommits() []domain.Commit {
	return []domain.Commit{
		{
			Hash:    "abc123",
			Message: "Fix compare pagination",
			Author:  "dev",
			Date:    time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			Hash:    "def456",
			Message: "Initial commit",
			Author:  "dev",
			Date:    time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestStore_SetAndGetCommits(t *testing.T) {
	s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	commits := sampleCommits()
	require.NoError(t, s.SetCommits(ctx, "key-1", commits))

	got, ok := s.GetCommits(ctx, "key-1")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "abc123", got[0].Hash)
	assert.Equal(t, "Fix compare pagination", got[0].Message)
	assert.True(t, commits[0].Date.Equal(got[0].Date))
}

func TestStore_MissingKey(t *testing.T) {
	s := setupTestStore(t, time.Hour)

	_, ok := s.GetCommits(context.Background(), "never-stored")
	assert.False(t, ok)
}

func TestStore_OverwriteReplacesEntry(t *testing.T) {
	s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SetCommits(ctx, "key-1", sampleCommits()))
	require.NoError(t, s.SetCommits(ctx, "key-1", []domain.Commit{{Hash: "only"}}))

	got, ok := s.GetCommits(ctx, "key-1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].Hash)
}

func TestStore_EmptyCommitListIsCacheable(t *testing.T) {
	s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SetCommits(ctx, "empty-branch", []domain.Commit{}))

	got, ok := s.GetCommits(ctx, "empty-branch")
	assert.True(t, ok, "an empty list is a valid cached answer")
	assert.Empty(t, got)
}

func TestStore_ExpiredEntryTreatedAsMissing(t *testing.T) {
	s := setupTestStore(t, time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, s.SetCommits(ctx, "key-1", sampleCommits()))
	time.Sleep(2 * time.Second) // stored_at has second granularity

	_, ok := s.GetCommits(ctx, "key-1")
	assert.False(t, ok, "expired entries should read as missing")
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s := setupTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, s.SetCommits(ctx, "key-1", sampleCommits()))

	_, ok := s.GetCommits(ctx, "key-1")
	assert.True(t, ok)
}

func TestStore_KeysAreIsolated(t *testing.T) {
	s := setupTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, s.SetCommits(ctx, "repo-a|main", sampleCommits()))
	require.NoError(t, s.SetCommits(ctx, "repo-b|main", []domain.Commit{{Hash: "other"}}))

	gotA, ok := s.GetCommits(ctx, "repo-a|main")
	require.True(t, ok)
	gotB, ok := s.GetCommits(ctx, "repo-b|main")
	require.True(t, ok)

	assert.NotEqual(t, gotA[0].Hash, gotB[0].Hash)
}

func TestNewStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	s, err := sqlite.NewStore(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetCommits(context.Background(), "key", sampleCommits()))
}

package gitlab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/branchscope/branchscope/internal/domain"
)

func TestMapBranches_DefaultFirstThenLexical(t *testing.T) {
	payload := []branchPayload{
		{Name: "zeta"},
		{Name: "main", Default: true},
		{Name: "alpha"},
		{Name: "HEAD"},
		{Name: ""},
	}

	out := mapBranches(payload)

	want := []domain.Branch{
		{Name: "main", Default: true},
		{Name: "alpha"},
		{Name: "zeta"},
	}
	assert.Equal(t, want, out)
}

func TestMapCommits_PreservesOrderAndUsesTitle(t *testing.T) {
	when := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	payload := []commitPayload{
		{ID: "abc", Title: "Fix parser", AuthorName: "dev", CreatedAt: when},
		{ID: "def", Message: "Multi line\nbody text", AuthorName: "dev2", CreatedAt: when},
	}

	out := mapCommits(payload)

	assert.Len(t, out, 2)
	assert.Equal(t, "abc", out[0].Hash)
	assert.Equal(t, "Fix parser", out[0].Message)
	assert.Equal(t, "Multi line", out[1].Message, "title fallback should take the first message line")
	assert.Equal(t, when, out[0].Date)
}

func TestMapChangedFiles_TouchDatesAndFallback(t *testing.T) {
	newest := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	payload := comparePayload{
		Commits: []commitPayload{
			{ID: "c1", CreatedAt: older},
			{ID: "c2", CreatedAt: newest},
		},
		Diffs: []diffPayload{
			{NewPath: "dated.go", OldPath: "dated.go"},
			{NewPath: "undated.go", OldPath: "undated.go"},
			{OldPath: "gone.go", DeletedFile: true},
		},
	}
	touchDates := map[string]time.Time{
		"dated.go": older,
		"gone.go":  older,
	}

	out := mapChangedFiles(payload, touchDates)

	assert.Len(t, out, 3)
	assert.Equal(t, older, out[0].LastTouched)
	assert.Equal(t, newest, out[1].LastTouched, "paths the walk missed fall back to the newest compared commit")
	assert.Equal(t, older, out[2].LastTouched, "deleted files are dated by their old path")
	assert.True(t, out[2].Deleted)
}

func TestMapChangedFiles_FlagsCarriedThrough(t *testing.T) {
	payload := comparePayload{
		Diffs: []diffPayload{
			{NewPath: "added.go", NewFile: true},
			{OldPath: "a.go", NewPath: "b.go", RenamedFile: true},
		},
	}

	out := mapChangedFiles(payload, nil)

	assert.True(t, out[0].New)
	assert.True(t, out[1].Renamed)
	assert.Equal(t, "a.go", out[1].OldPath)
	assert.Equal(t, "b.go", out[1].NewPath)
}

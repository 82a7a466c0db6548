package gitlab

import (
	"sort"
	"strings"
	"time"

	"github.com/branchscope/branchscope/internal/domain"
	"github.com/branchscope/branchscope/internal/usecase/compare"
)

// mapBranches converts wire branches to domain branches, lexically sorted
// with the default branch floated to the front. HEAD pseudo-refs are
// dropped.
func mapBranches(payload []branchPayload) []domain.Branch {
	out := make([]domain.Branch, 0, len(payload))
	for _, b := range payload {
		if b.Name == "" || b.Name == "HEAD" || strings.HasPrefix(b.Name, "HEAD ") {
			continue
		}
		out = append(out, domain.Branch{Name: b.Name, Default: b.Default})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Default != out[j].Default {
			return out[i].Default
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// mapCommits converts wire commits to domain commits, preserving the API's
// newest-first ordering. The title line stands in for the full message.
func mapCommits(payload []commitPayload) []domain.Commit {
	out := make([]domain.Commit, 0, len(payload))
	for _, c := range payload {
		message := c.Title
		if message == "" {
			message = firstLine(c.Message)
		}
		out = append(out, domain.Commit{
			Hash:    c.ID,
			Message: message,
			Author:  c.AuthorName,
			Date:    c.CreatedAt,
		})
	}
	return out
}

// mapChangedFiles converts compare diffs into the usecase's raw report,
// stamping each path with the date of the newest compared commit known to
// touch it. touchDates comes from walking per-commit diffs; paths the walk
// did not reach fall back to the newest compared commit.
func mapChangedFiles(payload comparePayload, touchDates map[string]time.Time) []compare.ChangedFile {
	var newest time.Time
	for _, c := range payload.Commits {
		if c.CreatedAt.After(newest) {
			newest = c.CreatedAt
		}
	}

	out := make([]compare.ChangedFile, 0, len(payload.Diffs))
	for _, d := range payload.Diffs {
		touched := touchDates[d.NewPath]
		if touched.IsZero() {
			touched = touchDates[d.OldPath]
		}
		if touched.IsZero() {
			touched = newest
		}
		out = append(out, compare.ChangedFile{
			OldPath:     d.OldPath,
			NewPath:     d.NewPath,
			New:         d.NewFile,
			Renamed:     d.RenamedFile,
			Deleted:     d.DeletedFile,
			LastTouched: touched,
		})
	}
	return out
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

package compare

import (
	"sort"

	"github.com/branchscope/branchscope/internal/domain"
)

// ClassifyFiles maps the adapter's raw changed-file report onto the
// three-way Added/Modified/Deleted model, filtered to entries whose most
// recent touching commit falls inside the window.
//
// Renames are deliberately flattened into a Deleted entry for the old path
// plus an Added entry for the new path; the UI's three-category model has no
// rename bucket. Entries without a touch date are kept only when the window
// is unbounded. Paths are unique in the output and sorted lexically so
// rendering is deterministic.
func ClassifyFiles(changes []ChangedFile, window Window) []domain.FileChange {
	if !window.IsValid() {
		return []domain.FileChange{}
	}

	byPath := make(map[string]domain.ChangeType, len(changes))
	for _, ch := range changes {
		if window.IsBounded() {
			if ch.LastTouched.IsZero() || !window.Contains(ch.LastTouched) {
				continue
			}
		}

		switch {
		case ch.Renamed:
			setIfAbsent(byPath, ch.OldPath, domain.ChangeDeleted)
			setIfAbsent(byPath, ch.NewPath, domain.ChangeAdded)
		case ch.New:
			setIfAbsent(byPath, ch.NewPath, domain.ChangeAdded)
		case ch.Deleted:
			setIfAbsent(byPath, ch.OldPath, domain.ChangeDeleted)
		default:
			setIfAbsent(byPath, ch.NewPath, domain.ChangeModified)
		}
	}

	out := make([]domain.FileChange, 0, len(byPath))
	for path, changeType := range byPath {
		if path == "" {
			continue
		}
		out = append(out, domain.FileChange{Path: path, Type: changeType})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func setIfAbsent(byPath map[string]domain.ChangeType, path string, t domain.ChangeType) {
	if path == "" {
		return
	}
	if _, exists := byPath[path]; !exists {
		byPath[path] = t
	}
}

package compare

import "github.com/branchscope/branchscope/internal/domain"

// ClassifyCommits partitions two branch commit lists into the commits unique
// to each side, filtered to the date window. Commits whose hash appears on
// both sides are shared history and excluded from both lists. Output order
// preserves the adapter's ordering (newest first).
//
// An empty window (From after To) yields two empty lists. Either input may
// be empty; classification still runs for the other side.
func ClassifyCommits(source, dest []domain.Commit, window Window) (sourceOnly, destOnly []domain.Commit) {
	sourceOnly = []domain.Commit{}
	destOnly = []domain.Commit{}
	if !window.IsValid() {
		return sourceOnly, destOnly
	}

	inSource := hashSet(source)
	inDest := hashSet(dest)

	for _, c := range source {
		if !window.Contains(c.Date) {
			continue
		}
		if _, shared := inDest[c.Hash]; shared {
			continue
		}
		sourceOnly = append(sourceOnly, c)
	}

	for _, c := range dest {
		if !window.Contains(c.Date) {
			continue
		}
		if _, shared := inSource[c.Hash]; shared {
			continue
		}
		destOnly = append(destOnly, c)
	}

	return sourceOnly, destOnly
}

func hashSet(commits []domain.Commit) map[string]struct{} {
	set := make(map[string]struct{}, len(commits))
	for _, c := range commits {
		set[c.Hash] = struct{}{}
	}
	return set
}

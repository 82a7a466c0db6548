package cli

import (
	"fmt"
	"io"

	"github.com/branchscope/branchscope/internal/domain"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

func paint(w io.Writer, color, text string) string {
	if !isTerminal(w) {
		return text
	}
	return color + text + colorReset
}

func renderBranches(w io.Writer, branches []domain.Branch) {
	for _, b := range branches {
		if b.Default {
			fmt.Fprintf(w, "* %s (default)\n", b.Name)
		} else {
			fmt.Fprintf(w, "  %s\n", b.Name)
		}
	}
}

func renderComparison(w io.Writer, sourceBranch, destBranch string, result domain.ComparisonResult) {
	fmt.Fprintf(w, "Commits only in %s (%d):\n", sourceBranch, len(result.SourceOnlyCommits))
	renderCommits(w, result.SourceOnlyCommits)

	fmt.Fprintf(w, "\nCommits only in %s (%d):\n", destBranch, len(result.DestOnlyCommits))
	renderCommits(w, result.DestOnlyCommits)

	if result.FilesUnavailable {
		fmt.Fprintf(w, "\n%s\n", paint(w, colorYellow, "File changes unavailable (upstream compare failed)"))
		return
	}

	fmt.Fprintf(w, "\nChanged files (%d):\n", len(result.FileChanges))
	for _, fc := range result.FileChanges {
		marker := "M"
		color := colorYellow
		switch fc.Type {
		case domain.ChangeAdded:
			marker = "A"
			color = colorGreen
		case domain.ChangeDeleted:
			marker = "D"
			color = colorRed
		}
		fmt.Fprintf(w, "  %s %s\n", paint(w, color, marker), fc.Path)
	}
}

func renderCommits(w io.Writer, commits []domain.Commit) {
	if len(commits) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, c := range commits {
		short := c.Hash
		if len(short) > 8 {
			short = short[:8]
		}
		fmt.Fprintf(w, "  %s %s (%s, %s)\n",
			paint(w, colorDim, short), c.Message, c.Author, c.Date.Format("2006-01-02"))
	}
}

func renderDiff(w io.Writer, path string, lines []domain.DiffLine) {
	fmt.Fprintf(w, "--- %s\n", path)
	for _, line := range lines {
		switch line.Kind {
		case domain.LineInsert:
			fmt.Fprintf(w, "%s\n", paint(w, colorGreen, "+ "+line.Text))
		case domain.LineDelete:
			fmt.Fprintf(w, "%s\n", paint(w, colorRed, "- "+line.Text))
		default:
			fmt.Fprintf(w, "  %s\n", line.Text)
		}
	}
}

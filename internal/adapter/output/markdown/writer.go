// Package markdown renders comparison results into Markdown report files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/branchscope/branchscope/internal/adapter/cli"
	"github.com/branchscope/branchscope/internal/domain"
)

type clock func() string

// Writer renders branch comparisons into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk.
func (w *Writer) Write(ctx context.Context, artifact cli.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s_%s.md",
		sanitise(artifact.Repository),
		sanitise(artifact.SourceBranch),
		sanitise(artifact.DestBranch),
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	content := buildContent(artifact)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(artifact cli.ReportArtifact) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Branch Comparison Report\n\n")
	builder.WriteString(fmt.Sprintf("- Repository: %s\n", artifact.Repository))
	builder.WriteString(fmt.Sprintf("- Source: %s\n", artifact.SourceBranch))
	builder.WriteString(fmt.Sprintf("- Destination: %s\n\n", artifact.DestBranch))

	result := artifact.Result

	builder.WriteString(fmt.Sprintf("## Commits Only In %s\n\n", artifact.SourceBranch))
	writeCommitRows(&builder, result.SourceOnlyCommits)

	builder.WriteString(fmt.Sprintf("## Commits Only In %s\n\n", artifact.DestBranch))
	writeCommitRows(&builder, result.DestOnlyCommits)

	builder.WriteString("## Changed Files\n\n")
	if result.FilesUnavailable {
		builder.WriteString("File changes could not be retrieved for this comparison.\n")
		return builder.String()
	}
	if len(result.FileChanges) == 0 {
		builder.WriteString("No file changes in the selected window.\n")
		return builder.String()
	}
	for _, fc := range result.FileChanges {
		builder.WriteString(fmt.Sprintf("- %s: `%s`\n", caser.String(string(fc.Type)), fc.Path))
	}
	builder.WriteString("\n")

	return builder.String()
}

func writeCommitRows(builder *strings.Builder, commits []domain.Commit) {
	if len(commits) == 0 {
		builder.WriteString("None.\n\n")
		return
	}
	for _, c := range commits {
		short := c.Hash
		if len(short) > 8 {
			short = short[:8]
		}
		builder.WriteString(fmt.Sprintf("- `%s` %s (%s, %s)\n",
			short, c.Message, c.Author, c.Date.Format("2006-01-02")))
	}
	builder.WriteString("\n")
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}

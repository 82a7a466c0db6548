// Package diff computes aligned line-level diffs for side-by-side rendering.
package diff

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/branchscope/branchscope/internal/domain"
)

// ErrBinaryContent indicates that content is not diffable as text.
var ErrBinaryContent = errors.New("content is not valid text")

// Lines aligns two text blobs line by line and emits one ordered row per
// source line, destination line, or shared line. Equal rows carry both line
// numbers; deletes carry only the source number, inserts only the destination
// number. The output is deterministic for a given input pair.
//
// Binary or otherwise undecodable input is refused with ErrBinaryContent
// rather than producing garbled rows.
func Lines(source, dest string) ([]domain.DiffLine, error) {
	if !isText(source) || !isText(dest) {
		return nil, ErrBinaryContent
	}

	src := splitLines(source)
	dst := splitLines(dest)

	matcher := difflib.NewMatcher(src, dst)

	out := make([]domain.DiffLine, 0, len(src)+len(dst))
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; op.I1+k < op.I2; k++ {
				out = append(out, domain.DiffLine{
					Kind:       domain.LineEqual,
					SourceLine: op.I1 + k + 1,
					DestLine:   op.J1 + k + 1,
					Text:       src[op.I1+k],
				})
			}
		case 'd':
			out = appendDeletes(out, src, op.I1, op.I2)
		case 'i':
			out = appendInserts(out, dst, op.J1, op.J2)
		case 'r':
			// Replacements surface as the deleted source lines followed by
			// the inserted destination lines.
			out = appendDeletes(out, src, op.I1, op.I2)
			out = appendInserts(out, dst, op.J1, op.J2)
		}
	}

	return out, nil
}

// Apply reconstructs the destination text from the source text and an
// aligned diff. Used by callers (and tests) to validate a diff round-trips.
func Apply(source string, lines []domain.DiffLine) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line.Kind == domain.LineDelete {
			continue
		}
		kept = append(kept, line.Text)
	}
	return strings.Join(kept, "\n")
}

func appendDeletes(out []domain.DiffLine, src []string, from, to int) []domain.DiffLine {
	for i := from; i < to; i++ {
		out = append(out, domain.DiffLine{
			Kind:       domain.LineDelete,
			SourceLine: i + 1,
			Text:       src[i],
		})
	}
	return out
}

func appendInserts(out []domain.DiffLine, dst []string, from, to int) []domain.DiffLine {
	for j := from; j < to; j++ {
		out = append(out, domain.DiffLine{
			Kind:     domain.LineInsert,
			DestLine: j + 1,
			Text:     dst[j],
		})
	}
	return out
}

// splitLines splits content into line-ending-stripped lines. A trailing
// newline does not produce a phantom empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// isText reports whether content can be treated as text. NUL bytes are the
// same heuristic git uses to flag binary blobs.
func isText(content string) bool {
	if !utf8.ValidString(content) {
		return false
	}
	return !strings.ContainsRune(content, '\x00')
}

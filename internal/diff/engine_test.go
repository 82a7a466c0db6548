package diff_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/branchscope/branchscope/internal/diff"
	"github.com/branchscope/branchscope/internal/domain"
)

func TestLines_SimpleReplacement(t *testing.T) {
	lines, err := diff.Lines("line1\nline2", "line1\nlineX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.DiffLine{
		{Kind: domain.LineEqual, SourceLine: 1, DestLine: 1, Text: "line1"},
		{Kind: domain.LineDelete, SourceLine: 2, Text: "line2"},
		{Kind: domain.LineInsert, DestLine: 2, Text: "lineX"},
	}
	assertLines(t, lines, want)
}

func TestLines_EmptySourceAllInserts(t *testing.T) {
	lines, err := diff.Lines("", "a\nb\nc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lines) != 3 {
		t.Fatalf("lines = %v, want 3 inserts", lines)
	}
	for i, line := range lines {
		if line.Kind != domain.LineInsert {
			t.Errorf("lines[%d].Kind = %s, want insert", i, line.Kind)
		}
		if line.DestLine != i+1 {
			t.Errorf("lines[%d].DestLine = %d, want %d", i, line.DestLine, i+1)
		}
		if line.SourceLine != 0 {
			t.Errorf("lines[%d].SourceLine = %d, want unset", i, line.SourceLine)
		}
	}
}

func TestLines_EmptyDestinationAllDeletes(t *testing.T) {
	lines, err := diff.Lines("a\nb", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(lines) != 2 {
		t.Fatalf("lines = %v, want 2 deletes", lines)
	}
	for i, line := range lines {
		if line.Kind != domain.LineDelete {
			t.Errorf("lines[%d].Kind = %s, want delete", i, line.Kind)
		}
		if line.DestLine != 0 {
			t.Errorf("lines[%d].DestLine = %d, want unset", i, line.DestLine)
		}
	}
}

func TestLines_IdenticalInputsAllEqual(t *testing.T) {
	content := "a\nb\nc"
	lines, err := diff.Lines(content, content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, line := range lines {
		if line.Kind != domain.LineEqual {
			t.Errorf("lines[%d].Kind = %s, want equal", i, line.Kind)
		}
		if line.SourceLine != line.DestLine {
			t.Errorf("lines[%d] should carry matching line numbers, got %d/%d", i, line.SourceLine, line.DestLine)
		}
	}
	if len(lines) != 3 {
		t.Errorf("lines = %v, want 3 equal rows", lines)
	}
}

func TestLines_BinaryContentRefused(t *testing.T) {
	if _, err := diff.Lines("text", "bin\x00ary"); !errors.Is(err, diff.ErrBinaryContent) {
		t.Errorf("NUL bytes: error = %v, want ErrBinaryContent", err)
	}
	if _, err := diff.Lines("\xff\xfe invalid", "text"); !errors.Is(err, diff.ErrBinaryContent) {
		t.Errorf("invalid UTF-8: error = %v, want ErrBinaryContent", err)
	}
}

func TestLines_Deterministic(t *testing.T) {
	source := "a\nb\nc\nd"
	dest := "a\nc\nx\nd"

	first, err := diff.Lines(source, dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := diff.Lines(source, dest)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		assertLines(t, again, first)
	}
}

func TestLines_RoundTripReconstructsDestination(t *testing.T) {
	pairs := []struct {
		name   string
		source string
		dest   string
	}{
		{"replacement", "line1\nline2", "line1\nlineX"},
		{"pure insertion", "a\nc", "a\nb\nc"},
		{"pure deletion", "a\nb\nc", "a\nc"},
		{"disjoint", "x\ny", "p\nq\nr"},
		{"identical", "same\nlines", "same\nlines"},
		{"interleaved edits", "one\ntwo\nthree\nfour\nfive", "one\n2\nthree\n4\nfive\nsix"},
		{"crlf input", "a\r\nb\r\n", "a\nc\n"},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := diff.Lines(tt.source, tt.dest)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := diff.Apply(tt.source, lines)
			want := normalize(tt.dest)
			if got != want {
				t.Errorf("Apply() = %q, want %q", got, want)
			}
		})
	}
}

func TestLines_LineNumbersAreConsistent(t *testing.T) {
	lines, err := diff.Lines("a\nb\nc\nd", "a\nx\nc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nextSource, nextDest := 1, 1
	for i, line := range lines {
		switch line.Kind {
		case domain.LineEqual:
			if line.SourceLine != nextSource || line.DestLine != nextDest {
				t.Errorf("lines[%d] equal at %d/%d, want %d/%d", i, line.SourceLine, line.DestLine, nextSource, nextDest)
			}
			nextSource++
			nextDest++
		case domain.LineDelete:
			if line.SourceLine != nextSource {
				t.Errorf("lines[%d] delete at source %d, want %d", i, line.SourceLine, nextSource)
			}
			nextSource++
		case domain.LineInsert:
			if line.DestLine != nextDest {
				t.Errorf("lines[%d] insert at dest %d, want %d", i, line.DestLine, nextDest)
			}
			nextDest++
		}
	}
}

// normalize strips line endings the way the engine does, so round-trip
// expectations compare like with like.
func normalize(content string) string {
	if content == "" {
		return ""
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return strings.Join(lines, "\n")
}

func assertLines(t *testing.T, got, want []domain.DiffLine) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("lines = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("lines[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

package domain

import "time"

// ChangeType classifies how a file differs between two refs.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// Commit is a single commit as reported by the source adapter.
// Identity is the hash; everything else is display metadata.
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
}

// Branch names a ref in the compared repository.
type Branch struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// FileChange is one changed path between two refs.
type FileChange struct {
	Path string     `json:"path"`
	Type ChangeType `json:"type"`
}

// LineKind classifies one row of an aligned line diff.
type LineKind string

const (
	LineEqual  LineKind = "equal"
	LineInsert LineKind = "insert"
	LineDelete LineKind = "delete"
)

// DiffLine is one aligned row of a side-by-side file diff.
// SourceLine is zero for inserts and DestLine is zero for deletes;
// equal rows carry both.
type DiffLine struct {
	Kind       LineKind `json:"kind"`
	SourceLine int      `json:"sourceLine,omitempty"`
	DestLine   int      `json:"destLine,omitempty"`
	Text       string   `json:"text"`
}

// ComparisonResult is the outcome of comparing two branches over a date
// window. It lives for the duration of one request and is never persisted.
//
// FilesUnavailable is set when commit retrieval succeeded but the changed-file
// report could not be fetched; callers get the commits they asked for with an
// explicitly flagged empty file section instead of a failed request.
type ComparisonResult struct {
	SourceOnlyCommits []Commit     `json:"sourceOnlyCommits"`
	DestOnlyCommits   []Commit     `json:"destOnlyCommits"`
	FileChanges       []FileChange `json:"fileChanges"`
	FilesUnavailable  bool         `json:"filesUnavailable,omitempty"`
}

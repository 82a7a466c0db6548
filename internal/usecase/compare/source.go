package compare

import (
	"context"
	"errors"
	"time"

	"github.com/branchscope/branchscope/internal/domain"
)

// ErrFileNotFound is returned by Source.GetRawFile when a path does not
// exist at the requested ref. Adapters translate their own not-found
// signals into this sentinel so the orchestrator can treat one-sided
// absence as a pure addition or deletion.
var ErrFileNotFound = errors.New("file not found at ref")

// RepoRef identifies the repository a request operates on. The token is
// forwarded to the upstream source verbatim and never stored.
type RepoRef struct {
	URL   string
	Token string
}

// ChangedFile is one entry of the adapter's raw diff-path report between two
// refs. The adapter tags each entry with the kind of change and the date of
// the most recent commit touching it, so the classifier can apply the
// request's date window.
type ChangedFile struct {
	OldPath     string
	NewPath     string
	New         bool
	Renamed     bool
	Deleted     bool
	LastTouched time.Time
}

// Source abstracts the repository data source. Implementations exist for the
// GitLab REST API and for locally mirrored clones; the orchestrator does not
// care which one answers.
type Source interface {
	// ListBranches returns the repository branches, lexically sorted with
	// the default branch first.
	ListBranches(ctx context.Context, repo RepoRef) ([]domain.Branch, error)

	// ListCommits returns commits reachable from branch, newest first.
	ListCommits(ctx context.Context, repo RepoRef, branch string) ([]domain.Commit, error)

	// CompareRefs returns the raw changed-file report between two refs.
	CompareRefs(ctx context.Context, repo RepoRef, from, to string) ([]ChangedFile, error)

	// GetRawFile returns the content of path at ref, or ErrFileNotFound.
	GetRawFile(ctx context.Context, repo RepoRef, ref, path string) (string, error)
}

// Cache is an optional keyed cache for commit lists, scoped per
// repoURL+token+branch so concurrent requests for different repositories or
// credentials never observe each other's data.
type Cache interface {
	GetCommits(ctx context.Context, key string) ([]domain.Commit, bool)
	SetCommits(ctx context.Context, key string, commits []domain.Commit) error
}

// Logger defines the outbound port for structured warnings and info.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

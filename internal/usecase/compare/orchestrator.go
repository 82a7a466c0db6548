package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/branchscope/branchscope/internal/diff"
	"github.com/branchscope/branchscope/internal/domain"
)

// ErrInvalidInput flags caller-supplied parameters that fail validation.
// It is surfaced to the user verbatim and never retried.
var ErrInvalidInput = errors.New("invalid input")

// ErrPathNotFound is returned by DiffFile when the requested path exists in
// neither branch.
var ErrPathNotFound = errors.New("path not found in either branch")

// CompareRequest is one branch comparison request.
type CompareRequest struct {
	Repo         RepoRef
	SourceBranch string
	DestBranch   string
	Window       Window
}

// DiffRequest asks for the aligned line diff of a single file between two
// branches.
type DiffRequest struct {
	Repo         RepoRef
	Path         string
	SourceBranch string
	DestBranch   string
}

// Deps captures the orchestrator's collaborators. Source is required; Cache
// and Logger are optional.
type Deps struct {
	Source Source
	Cache  Cache
	Logger Logger
}

// Orchestrator composes the source adapter, the classifiers, and the line
// diff engine into the two request-scoped operations the transport layers
// call. It holds no per-request state.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator wires the orchestrator dependencies.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Branches lists the repository branches via the source adapter.
func (o *Orchestrator) Branches(ctx context.Context, repo RepoRef) ([]domain.Branch, error) {
	if err := o.validateDependencies(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(repo.URL) == "" {
		return nil, fmt.Errorf("%w: repository URL is required", ErrInvalidInput)
	}
	return o.deps.Source.ListBranches(ctx, repo)
}

// Compare fetches both branch commit lists and the changed-file report,
// classifies them against the request's date window, and assembles the
// result.
//
// The two commit fetches run concurrently; cancelling the request context
// cancels both. A failure fetching the changed-file report does not fail the
// request: the result carries the classified commits with an empty file
// section and FilesUnavailable set, and the failure is logged.
func (o *Orchestrator) Compare(ctx context.Context, req CompareRequest) (domain.ComparisonResult, error) {
	if err := o.validateDependencies(); err != nil {
		return domain.ComparisonResult{}, err
	}
	if err := validateCompareRequest(req); err != nil {
		return domain.ComparisonResult{}, err
	}

	empty := domain.ComparisonResult{
		SourceOnlyCommits: []domain.Commit{},
		DestOnlyCommits:   []domain.Commit{},
		FileChanges:       []domain.FileChange{},
	}

	// An inverted window matches nothing; answer without touching upstream.
	if !req.Window.IsValid() {
		return empty, nil
	}

	var sourceCommits, destCommits []domain.Commit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sourceCommits, err = o.fetchCommits(gctx, req.Repo, req.SourceBranch)
		if err != nil {
			return fmt.Errorf("fetch %s commits: %w", req.SourceBranch, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		destCommits, err = o.fetchCommits(gctx, req.Repo, req.DestBranch)
		if err != nil {
			return fmt.Errorf("fetch %s commits: %w", req.DestBranch, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ComparisonResult{}, err
	}

	sourceOnly, destOnly := ClassifyCommits(sourceCommits, destCommits, req.Window)

	result := domain.ComparisonResult{
		SourceOnlyCommits: sourceOnly,
		DestOnlyCommits:   destOnly,
		FileChanges:       []domain.FileChange{},
	}

	changed, err := o.deps.Source.CompareRefs(ctx, req.Repo, req.DestBranch, req.SourceBranch)
	if err != nil {
		// Commit classification survives a failed file report; the caller
		// gets an explicitly flagged empty file section instead of an error.
		result.FilesUnavailable = true
		if o.deps.Logger != nil {
			o.deps.Logger.LogWarning(ctx, "changed-file report unavailable", map[string]interface{}{
				"source": req.SourceBranch,
				"dest":   req.DestBranch,
				"error":  err.Error(),
			})
		}
		return result, nil
	}

	result.FileChanges = ClassifyFiles(changed, req.Window)
	return result, nil
}

// DiffFile fetches the file's content from both branches and returns the
// aligned line diff. A path absent from one branch is a pure addition or
// deletion; a path absent from both is ErrPathNotFound. Binary content
// surfaces diff.ErrBinaryContent.
func (o *Orchestrator) DiffFile(ctx context.Context, req DiffRequest) ([]domain.DiffLine, error) {
	if err := o.validateDependencies(); err != nil {
		return nil, err
	}
	if err := validateDiffRequest(req); err != nil {
		return nil, err
	}

	var sourceText, destText string
	var sourceMissing, destMissing bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := o.deps.Source.GetRawFile(gctx, req.Repo, req.SourceBranch, req.Path)
		if errors.Is(err, ErrFileNotFound) {
			sourceMissing = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch %s@%s: %w", req.Path, req.SourceBranch, err)
		}
		sourceText = text
		return nil
	})
	g.Go(func() error {
		text, err := o.deps.Source.GetRawFile(gctx, req.Repo, req.DestBranch, req.Path)
		if errors.Is(err, ErrFileNotFound) {
			destMissing = true
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch %s@%s: %w", req.Path, req.DestBranch, err)
		}
		destText = text
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if sourceMissing && destMissing {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, req.Path)
	}

	return diff.Lines(sourceText, destText)
}

// fetchCommits consults the keyed cache before hitting the source adapter.
// Cache write failures are logged and otherwise ignored.
func (o *Orchestrator) fetchCommits(ctx context.Context, repo RepoRef, branch string) ([]domain.Commit, error) {
	key := ""
	if o.deps.Cache != nil {
		key = CacheKey(repo, branch)
		if commits, ok := o.deps.Cache.GetCommits(ctx, key); ok {
			return commits, nil
		}
	}

	commits, err := o.deps.Source.ListCommits(ctx, repo, branch)
	if err != nil {
		return nil, err
	}

	if o.deps.Cache != nil {
		if err := o.deps.Cache.SetCommits(ctx, key, commits); err != nil && o.deps.Logger != nil {
			o.deps.Logger.LogWarning(ctx, "commit cache write failed", map[string]interface{}{
				"branch": branch,
				"error":  err.Error(),
			})
		}
	}

	return commits, nil
}

func (o *Orchestrator) validateDependencies() error {
	if o.deps.Source == nil {
		return errors.New("source adapter is required")
	}
	return nil
}

func validateCompareRequest(req CompareRequest) error {
	if strings.TrimSpace(req.Repo.URL) == "" {
		return fmt.Errorf("%w: repository URL is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.SourceBranch) == "" {
		return fmt.Errorf("%w: source branch is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.DestBranch) == "" {
		return fmt.Errorf("%w: destination branch is required", ErrInvalidInput)
	}
	if req.SourceBranch == req.DestBranch {
		return fmt.Errorf("%w: source and destination branches must differ", ErrInvalidInput)
	}
	return nil
}

func validateDiffRequest(req DiffRequest) error {
	if strings.TrimSpace(req.Repo.URL) == "" {
		return fmt.Errorf("%w: repository URL is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Path) == "" {
		return fmt.Errorf("%w: file path is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.SourceBranch) == "" || strings.TrimSpace(req.DestBranch) == "" {
		return fmt.Errorf("%w: both branches are required", ErrInvalidInput)
	}
	if req.SourceBranch == req.DestBranch {
		return fmt.Errorf("%w: source and destination branches must differ", ErrInvalidInput)
	}
	return nil
}

package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/branchscope/branchscope/internal/adapter/rest"
	"github.com/branchscope/branchscope/internal/domain"
	"github.com/branchscope/branchscope/internal/usecase/compare"
)

const (
	defaultCloneTimeout = 5 * time.Minute
	defaultFetchTimeout = 2 * time.Minute

	// maxDateWalk bounds the history walk used to date changed files.
	maxDateWalk = 500
)

// Engine answers the compare.Source port from a local bare mirror instead of
// the remote REST API. Each repository URL gets one mirror directory under
// baseDir; the mirror is cloned on first use and fetched on every call after
// that, so results track the remote without repeated full clones.
type Engine struct {
	baseDir      string
	cloneTimeout time.Duration
	fetchTimeout time.Duration
	logger       rest.Logger
}

// NewEngine creates a mirror engine rooted at baseDir.
func NewEngine(baseDir string) *Engine {
	return &Engine{
		baseDir:      baseDir,
		cloneTimeout: defaultCloneTimeout,
		fetchTimeout: defaultFetchTimeout,
	}
}

// SetTimeouts overrides the clone and fetch deadlines.
func (e *Engine) SetTimeouts(clone, fetch time.Duration) {
	if clone > 0 {
		e.cloneTimeout = clone
	}
	if fetch > 0 {
		e.fetchTimeout = fetch
	}
}

// SetLogger wires structured logging for mirror operations.
func (e *Engine) SetLogger(logger rest.Logger) {
	e.logger = logger
}

// ListBranches implements compare.Source.
func (e *Engine) ListBranches(ctx context.Context, repo compare.RepoRef) ([]domain.Branch, error) {
	gitRepo, err := e.openOrClone(ctx, repo)
	if err != nil {
		return nil, err
	}

	defaultName := headBranchName(gitRepo)

	iter, err := gitRepo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}

	var branches []domain.Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsBranch() {
			return nil
		}
		name := ref.Name().Short()
		branches = append(branches, domain.Branch{
			Name:    name,
			Default: name == defaultName,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk references: %w", err)
	}

	sort.Slice(branches, func(i, j int) bool {
		if branches[i].Default != branches[j].Default {
			return branches[i].Default
		}
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

// ListCommits implements compare.Source. Commits come back newest first.
func (e *Engine) ListCommits(ctx context.Context, repo compare.RepoRef, branch string) ([]domain.Commit, error) {
	gitRepo, err := e.openOrClone(ctx, repo)
	if err != nil {
		return nil, err
	}

	head, err := resolveCommit(gitRepo, branch)
	if err != nil {
		return nil, err
	}

	iter, err := gitRepo.Log(&git.LogOptions{
		From:  head.Hash,
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("log %s: %w", branch, err)
	}
	defer iter.Close()

	var commits []domain.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, domain.Commit{
			Hash:    c.Hash.String(),
			Message: firstLine(c.Message),
			Author:  c.Author.Name,
			Date:    c.Author.When.UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk log %s: %w", branch, err)
	}
	return commits, nil
}

// CompareRefs implements compare.Source. Changed paths are dated by walking
// the to-side history newest first until every path has a date, the from
// commit is reached, or the walk budget runs out.
func (e *Engine) CompareRefs(ctx context.Context, repo compare.RepoRef, from, to string) ([]compare.ChangedFile, error) {
	gitRepo, err := e.openOrClone(ctx, repo)
	if err != nil {
		return nil, err
	}

	fromCommit, err := resolveCommit(gitRepo, from)
	if err != nil {
		return nil, err
	}
	toCommit, err := resolveCommit(gitRepo, to)
	if err != nil {
		return nil, err
	}

	patch, err := fromCommit.PatchContext(ctx, toCommit)
	if err != nil {
		return nil, fmt.Errorf("compute patch %s..%s: %w", from, to, err)
	}

	var changed []compare.ChangedFile
	for _, fp := range patch.FilePatches() {
		fileFrom, fileTo := fp.Files()
		cf := compare.ChangedFile{}
		switch {
		case fileFrom == nil && fileTo == nil:
			continue
		case fileFrom == nil:
			cf.New = true
			cf.NewPath = fileTo.Path()
		case fileTo == nil:
			cf.Deleted = true
			cf.OldPath = fileFrom.Path()
		default:
			cf.OldPath = fileFrom.Path()
			cf.NewPath = fileTo.Path()
			cf.Renamed = fileFrom.Path() != fileTo.Path()
		}
		changed = append(changed, cf)
	}

	if len(changed) > 0 {
		dates := e.resolveTouchDates(gitRepo, fromCommit.Hash, toCommit, changed)
		for i := range changed {
			path := changed[i].NewPath
			if path == "" {
				path = changed[i].OldPath
			}
			if when, ok := dates[path]; ok {
				changed[i].LastTouched = when
			} else {
				changed[i].LastTouched = toCommit.Author.When.UTC()
			}
		}
	}
	return changed, nil
}

// GetRawFile implements compare.Source.
func (e *Engine) GetRawFile(ctx context.Context, repo compare.RepoRef, ref, path string) (string, error) {
	gitRepo, err := e.openOrClone(ctx, repo)
	if err != nil {
		return "", err
	}

	commit, err := resolveCommit(gitRepo, ref)
	if err != nil {
		return "", err
	}

	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %s@%s", compare.ErrFileNotFound, path, ref)
		}
		return "", fmt.Errorf("open %s@%s: %w", path, ref, err)
	}

	contents, err := file.Contents()
	if err != nil {
		return "", fmt.Errorf("read %s@%s: %w", path, ref, err)
	}
	return contents, nil
}

// openOrClone returns the mirror for repo, cloning it on first use and
// fetching otherwise.
func (e *Engine) openOrClone(ctx context.Context, repo compare.RepoRef) (*git.Repository, error) {
	if strings.TrimSpace(repo.URL) == "" {
		return nil, fmt.Errorf("%w: repository URL is required", compare.ErrInvalidInput)
	}

	path := filepath.Join(e.baseDir, SanitizeRepoName(repo.URL)+".git")
	auth := authFor(repo)

	if _, statErr := os.Stat(path); statErr == nil {
		gitRepo, err := git.PlainOpen(path)
		if err != nil {
			return nil, fmt.Errorf("open mirror %s: %w", path, err)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()

		err = gitRepo.FetchContext(fetchCtx, &git.FetchOptions{
			RemoteName: "origin",
			RefSpecs:   []config.RefSpec{"+refs/heads/*:refs/heads/*"},
			Auth:       auth,
			Prune:      true,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil, mapTransportError(err)
		}
		return gitRepo, nil
	}

	if e.logger != nil {
		e.logger.LogInfo(ctx, "cloning mirror", map[string]interface{}{
			"path": path,
		})
	}

	cloneCtx, cancel := context.WithTimeout(ctx, e.cloneTimeout)
	defer cancel()

	gitRepo, err := git.PlainCloneContext(cloneCtx, path, true, &git.CloneOptions{
		URL:    repo.URL,
		Mirror: true,
		Auth:   auth,
	})
	if err != nil {
		// A failed clone leaves a partial directory that would shadow the
		// next attempt.
		_ = os.RemoveAll(path)
		return nil, mapTransportError(err)
	}
	return gitRepo, nil
}

// resolveTouchDates walks the to-side history newest first and records, for
// each changed path, the date of the most recent commit that touched it.
func (e *Engine) resolveTouchDates(gitRepo *git.Repository, stopAt plumbing.Hash, toCommit *object.Commit, changed []compare.ChangedFile) map[string]time.Time {
	want := make(map[string]bool, len(changed))
	for _, cf := range changed {
		path := cf.NewPath
		if path == "" {
			path = cf.OldPath
		}
		want[path] = true
	}

	dates := make(map[string]time.Time, len(want))

	iter, err := gitRepo.Log(&git.LogOptions{
		From:  toCommit.Hash,
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return dates
	}
	defer iter.Close()

	walked := 0
	_ = iter.ForEach(func(c *object.Commit) error {
		if c.Hash == stopAt || len(dates) == len(want) || walked >= maxDateWalk {
			return storer.ErrStop
		}
		walked++

		stats, statErr := c.Stats()
		if statErr != nil {
			return nil
		}
		for _, s := range stats {
			if want[s.Name] {
				if _, seen := dates[s.Name]; !seen {
					dates[s.Name] = c.Author.When.UTC()
				}
			}
		}
		return nil
	})
	return dates
}

func authFor(repo compare.RepoRef) transport.AuthMethod {
	if repo.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "oauth2", Password: repo.Token}
}

// headBranchName returns the branch HEAD points at, or "" for a detached or
// missing HEAD.
func headBranchName(gitRepo *git.Repository) string {
	ref, err := gitRepo.Reference(plumbing.HEAD, false)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return ""
	}
	return ref.Target().Short()
}

// resolveCommit resolves a branch name, tag, or hash to its commit.
func resolveCommit(gitRepo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := gitRepo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, &rest.Error{
			Type:      rest.ErrTypeNotFound,
			Message:   fmt.Sprintf("ref %q not found", rev),
			Retryable: false,
			Source:    "mirror",
		}
	}
	commit, err := gitRepo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", rev, err)
	}
	return commit, nil
}

// mapTransportError translates go-git transport failures into the shared
// error taxonomy so callers see the same types as the REST adapter.
func mapTransportError(err error) error {
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired), errors.Is(err, transport.ErrAuthorizationFailed):
		return &rest.Error{
			Type:      rest.ErrTypeAuthentication,
			Message:   err.Error(),
			Retryable: false,
			Source:    "mirror",
		}
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return &rest.Error{
			Type:      rest.ErrTypeNotFound,
			Message:   err.Error(),
			Retryable: false,
			Source:    "mirror",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &rest.Error{
			Type:      rest.ErrTypeTimeout,
			Message:   err.Error(),
			Retryable: true,
			Source:    "mirror",
		}
	default:
		return &rest.Error{
			Type:      rest.ErrTypeServiceUnavailable,
			Message:   err.Error(),
			Retryable: true,
			Source:    "mirror",
		}
	}
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return strings.TrimSpace(message[:idx])
	}
	return strings.TrimSpace(message)
}

package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/branchscope/branchscope/internal/adapter/rest"
	"github.com/branchscope/branchscope/internal/domain"
	"github.com/branchscope/branchscope/internal/usecase/compare"
)

const (
	defaultTimeout = 30 * time.Second
	perPage        = 100

	// maxCommitPages bounds ListCommits; five pages of one hundred commits
	// is far more history than any date window the UI offers.
	maxCommitPages = 5

	// maxTouchLookups bounds the per-commit diff walk used to date changed
	// files. Past this many compared commits the remaining paths fall back
	// to the newest compared commit's date.
	maxTouchLookups = 50
)

// Client answers the compare.Source port over the GitLab v4 REST API.
// The instance to talk to is derived from each request's repository URL, so
// one client serves any number of GitLab hosts. The caller's token is
// forwarded as a PRIVATE-TOKEN header and never stored.
type Client struct {
	httpClient *http.Client
	retryConf  rest.RetryConfig
	logger     rest.Logger
	metrics    rest.Metrics
}

// NewClient creates a GitLab API client with default timeout and retry
// settings.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  rest.DefaultRetryConfig(),
	}
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior.
func (c *Client) SetRetryConfig(conf rest.RetryConfig) {
	c.retryConf = conf
}

// SetLogger wires structured request/response logging.
func (c *Client) SetLogger(logger rest.Logger) {
	c.logger = logger
}

// SetMetrics wires request metrics.
func (c *Client) SetMetrics(metrics rest.Metrics) {
	c.metrics = metrics
}

// ListBranches implements compare.Source.
func (c *Client) ListBranches(ctx context.Context, repo compare.RepoRef) ([]domain.Branch, error) {
	project, err := ParseRepoURL(repo.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", compare.ErrInvalidInput, err)
	}

	var all []branchPayload
	endpoint := fmt.Sprintf("%s/projects/%s/repository/branches?per_page=%d", project.APIBase, project.EncodedPath, perPage)
	if err := c.getPaged(ctx, "listBranches", repo.Token, endpoint, &all); err != nil {
		return nil, err
	}
	return mapBranches(all), nil
}

// ListCommits implements compare.Source. Commits come back newest first, as
// the API returns them.
func (c *Client) ListCommits(ctx context.Context, repo compare.RepoRef, branch string) ([]domain.Commit, error) {
	project, err := ParseRepoURL(repo.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", compare.ErrInvalidInput, err)
	}

	var all []commitPayload
	endpoint := fmt.Sprintf("%s/projects/%s/repository/commits?ref_name=%s&per_page=%d",
		project.APIBase, project.EncodedPath, url.QueryEscape(branch), perPage)
	if err := c.getPaged(ctx, "listCommits", repo.Token, endpoint, &all); err != nil {
		return nil, err
	}
	return mapCommits(all), nil
}

// CompareRefs implements compare.Source. It fetches the compare report for
// from..to and then dates each changed path by walking the compared commits'
// individual diffs, newest first, until every path has a date or the lookup
// budget runs out.
func (c *Client) CompareRefs(ctx context.Context, repo compare.RepoRef, from, to string) ([]compare.ChangedFile, error) {
	project, err := ParseRepoURL(repo.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", compare.ErrInvalidInput, err)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/repository/compare?from=%s&to=%s",
		project.APIBase, project.EncodedPath, url.QueryEscape(from), url.QueryEscape(to))

	var payload comparePayload
	body, _, err := c.get(ctx, "compareRefs", repo.Token, endpoint)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode compare response: %w", err)
	}

	touchDates := c.resolveTouchDates(ctx, repo.Token, project, payload)
	return mapChangedFiles(payload, touchDates), nil
}

// GetRawFile implements compare.Source. A 404 becomes compare.ErrFileNotFound
// so the orchestrator can treat one-sided absence as a pure add or delete.
func (c *Client) GetRawFile(ctx context.Context, repo compare.RepoRef, ref, path string) (string, error) {
	project, err := ParseRepoURL(repo.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", compare.ErrInvalidInput, err)
	}

	endpoint := fmt.Sprintf("%s/projects/%s/repository/files/%s/raw?ref=%s",
		project.APIBase, project.EncodedPath, url.PathEscape(path), url.QueryEscape(ref))

	body, _, err := c.get(ctx, "getRawFile", repo.Token, endpoint)
	if err != nil {
		var restErr *rest.Error
		if errors.As(err, &restErr) && restErr.Type == rest.ErrTypeNotFound {
			return "", fmt.Errorf("%w: %s@%s", compare.ErrFileNotFound, path, ref)
		}
		return "", err
	}
	return string(body), nil
}

// resolveTouchDates walks the compared commits newest-first, fetching each
// one's diff to learn which paths it touched. Lookup failures degrade to the
// fallback dating in mapChangedFiles rather than failing the compare.
func (c *Client) resolveTouchDates(ctx context.Context, token string, project Project, payload comparePayload) map[string]time.Time {
	want := len(payload.Diffs)
	dates := make(map[string]time.Time, want)
	if want == 0 {
		return dates
	}

	// Compare responses list commits oldest first; walk from the newest end.
	lookups := 0
	for i := len(payload.Commits) - 1; i >= 0 && len(dates) < want && lookups < maxTouchLookups; i-- {
		commit := payload.Commits[i]
		lookups++

		endpoint := fmt.Sprintf("%s/projects/%s/repository/commits/%s/diff",
			project.APIBase, project.EncodedPath, url.PathEscape(commit.ID))

		var diffs []diffPayload
		body, _, err := c.get(ctx, "commitDiff", token, endpoint)
		if err != nil || json.Unmarshal(body, &diffs) != nil {
			if c.logger != nil {
				c.logger.LogWarning(ctx, "commit diff lookup failed", map[string]interface{}{
					"commit": commit.ID,
				})
			}
			continue
		}

		for _, d := range diffs {
			if _, seen := dates[d.NewPath]; !seen && d.NewPath != "" {
				dates[d.NewPath] = commit.CreatedAt
			}
			if _, seen := dates[d.OldPath]; !seen && d.OldPath != "" {
				dates[d.OldPath] = commit.CreatedAt
			}
		}
	}

	return dates
}

// getPaged follows GitLab's X-Next-Page header, appending each page into
// out, which must be a pointer to a slice of wire payloads.
func (c *Client) getPaged(ctx context.Context, operation, token, endpoint string, out interface{}) error {
	page := 1
	for {
		pageURL := fmt.Sprintf("%s&page=%d", endpoint, page)
		body, header, err := c.get(ctx, operation, token, pageURL)
		if err != nil {
			return err
		}

		switch slice := out.(type) {
		case *[]branchPayload:
			var items []branchPayload
			if err := json.Unmarshal(body, &items); err != nil {
				return fmt.Errorf("decode %s response: %w", operation, err)
			}
			*slice = append(*slice, items...)
		case *[]commitPayload:
			var items []commitPayload
			if err := json.Unmarshal(body, &items); err != nil {
				return fmt.Errorf("decode %s response: %w", operation, err)
			}
			*slice = append(*slice, items...)
		default:
			return fmt.Errorf("unsupported page type %T", out)
		}

		next := header.Get("X-Next-Page")
		nextPage, err := strconv.Atoi(next)
		if next == "" || err != nil || nextPage <= page {
			return nil
		}
		page = nextPage

		if operation == "listCommits" && page > maxCommitPages {
			return nil
		}
	}
}

// get executes one GET with retry and returns the response body and headers.
func (c *Client) get(ctx context.Context, operation, token, endpoint string) ([]byte, http.Header, error) {
	var body []byte
	var header http.Header

	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordRequest(sourceName, operation)
	}
	if c.logger != nil {
		c.logger.LogRequest(ctx, rest.RequestLog{
			Source:    sourceName,
			Operation: operation,
			Timestamp: start,
			URL:       endpoint,
			Token:     token,
		})
	}

	err := rest.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if reqErr != nil {
			return &rest.Error{
				Type:      rest.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Source:    sourceName,
			}
		}
		if token != "" {
			req.Header.Set("PRIVATE-TOKEN", token)
		}
		req.Header.Set("Accept", "application/json")

		resp, callErr := c.httpClient.Do(req)
		if callErr != nil {
			// Could be a timeout or a network error; both are worth a retry.
			return &rest.Error{
				Type:      rest.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Source:    sourceName,
			}
		}
		defer resp.Body.Close()

		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return &rest.Error{
				Type:       rest.ErrTypeUnknown,
				Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
				StatusCode: resp.StatusCode,
				Retryable:  resp.StatusCode >= 500,
				Source:     sourceName,
			}
		}

		if resp.StatusCode >= 400 {
			return MapHTTPError(resp.StatusCode, respBody)
		}

		body = respBody
		header = resp.Header
		return nil
	}, c.retryConf)

	duration := time.Since(start)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordError(sourceName, operation, errorType(err))
		}
		if c.logger != nil {
			c.logger.LogError(ctx, rest.ErrorLog{
				Source:    sourceName,
				Operation: operation,
				Timestamp: start,
				Duration:  duration,
				Error:     err,
				ErrorType: errorType(err),
				Retryable: rest.ShouldRetry(err),
			})
		}
		return nil, nil, err
	}

	if c.metrics != nil {
		c.metrics.RecordDuration(sourceName, operation, duration)
	}
	if c.logger != nil {
		c.logger.LogResponse(ctx, rest.ResponseLog{
			Source:    sourceName,
			Operation: operation,
			Timestamp: start,
			Duration:  duration,
		})
	}
	return body, header, nil
}

func errorType(err error) rest.ErrorType {
	var restErr *rest.Error
	if errors.As(err, &restErr) {
		return restErr.Type
	}
	return rest.ErrTypeUnknown
}
